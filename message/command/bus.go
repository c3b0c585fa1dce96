package command

import (
	"github.com/Sathursan-S/Ticketer/message/wire"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewBus sends commands to the topic named by their routing key, e.g.
// CreateEventTicket to event.ticket.create.
func NewBus(publisher message.Publisher, logger watermill.LoggerAdapter) (*cqrs.CommandBus, error) {
	return cqrs.NewCommandBusWithConfig(log.CorrelationPublisherDecorator{Publisher: publisher}, cqrs.CommandBusConfig{
		GeneratePublishTopic: func(params cqrs.CommandBusGeneratePublishTopicParams) (string, error) {
			return wire.Topic(params.CommandName)
		},
		Marshaler: wire.NewMarshaler(),
		Logger:    logger,
	})
}
