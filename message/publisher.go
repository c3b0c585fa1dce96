package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/Sathursan-S/Ticketer/message/wire"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Outbox parks a message for later relay when the broker is unreachable.
type Outbox interface {
	Publish(ctx context.Context, event any) error
}

// Publisher emits lifecycle messages to the topic named by their routing key.
type Publisher struct {
	bus     *cqrs.EventBus
	outbox  Outbox
	timeout time.Duration
}

func NewPublisher(
	publisher message.Publisher,
	outbox Outbox,
	timeout time.Duration,
	logger watermill.LoggerAdapter,
) (*Publisher, error) {
	bus, err := newEventBus(publisher, logger)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}

	return &Publisher{
		bus:     bus,
		outbox:  outbox,
		timeout: timeout,
	}, nil
}

func newEventBus(publisher message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(log.CorrelationPublisherDecorator{Publisher: publisher}, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return wire.Topic(params.EventName)
		},
		Marshaler: wire.NewMarshaler(),
		Logger:    logger,
	})
}

// Publish waits at most the configured timeout for the broker. When an outbox
// is configured a failed message is parked there and the returned
// TransportError is marked as deferred.
func (p *Publisher) Publish(ctx context.Context, event any) error {
	typ, ok := contract.TypeOf(event)
	if !ok {
		return fmt.Errorf("unknown message type %T", event)
	}
	op := "publishing " + string(typ)

	err := p.publishWithTimeout(ctx, event)
	if err == nil {
		return nil
	}

	if p.outbox == nil {
		return entity.TransportError{Op: op, Err: err}
	}

	if outboxErr := p.outbox.Publish(context.WithoutCancel(ctx), event); outboxErr != nil {
		return entity.TransportError{Op: op, Err: errors.Join(err, fmt.Errorf("writing to outbox: %w", outboxErr))}
	}

	log.FromContext(ctx).WithError(err).WithField("message_type", typ).Warn("Broker unavailable, message parked in outbox")

	return entity.TransportError{Op: op, Deferred: true, Err: err}
}

func (p *Publisher) publishWithTimeout(ctx context.Context, event any) error {
	if p.timeout <= 0 {
		return p.bus.Publish(ctx, event)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.bus.Publish(ctx, event)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// The publish may still land after this; with the outbox relaying the same
		// message consumers see a duplicate and drop it by header id.
		return fmt.Errorf("broker did not confirm within %s: %w", p.timeout, ctx.Err())
	}
}
