package command_test

import (
	"context"
	"testing"
	"time"

	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/message/command"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Send(t *testing.T) {
	logger := watermill.NopLogger{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, logger)
	t.Cleanup(func() {
		_ = pubSub.Close()
	})

	bus, err := command.NewBus(pubSub, logger)
	require.NoError(t, err)

	cmd := contract.NewCreateEventTicket("key-1", "event-1", 250)
	require.NoError(t, bus.Send(context.Background(), cmd))

	messages, err := pubSub.Subscribe(context.Background(), contract.KeyCreateEventTicket)
	require.NoError(t, err)

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "CreateEventTicket", msg.Metadata.Get("name"))
		assert.Contains(t, string(msg.Payload), `"number_of_tickets":250`)
	case <-time.After(time.Second):
		t.Fatal("command not published")
	}
}
