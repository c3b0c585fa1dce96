package message

import (
	"fmt"
	"time"

	"github.com/Sathursan-S/Ticketer/clock"
	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/message/command"
	"github.com/Sathursan-S/Ticketer/message/event"
	"github.com/Sathursan-S/Ticketer/message/wire"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

type RouterDeps struct {
	Clock            clock.Clock
	DeadLetterTopic  string
	HandlerTimeout   time.Duration
	Logger           watermill.LoggerAdapter
	Mailer           event.Mailer
	MaxRetries       int
	NewSubscriber    wire.SubscriberFactory
	NotificationRepo event.NotificationRepo
	ProcessedStore   event.ProcessedStore
	Publisher        message.Publisher
	ServiceName      string
}

type Router struct {
	*message.Router
}

func NewRouter(deps RouterDeps) (*Router, error) {
	if deps.DeadLetterTopic == "" {
		deps.DeadLetterTopic = contract.KeyDeadLetter
	}

	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(deps.Publisher, deps.DeadLetterTopic)
	if err != nil {
		return nil, fmt.Errorf("creating poison queue: %w", err)
	}

	metricsMiddleware, err := newMetricsMiddleware()
	if err != nil {
		return nil, fmt.Errorf("creating metrics middleware: %w", err)
	}

	router.AddMiddleware(correlationIDMiddleware)
	router.AddMiddleware(loggerMiddleware)
	router.AddMiddleware(handlerLogMiddleware)
	router.AddMiddleware(poisonQueue)
	router.AddMiddleware(metricsMiddleware)
	// Timeout cancels the message context when it returns, so it has to wrap
	// Retry; all attempts share one deadline.
	if deps.HandlerTimeout > 0 {
		router.AddMiddleware(middleware.Timeout(deps.HandlerTimeout))
	}
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      deps.MaxRetries,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          deps.Logger,
	}.Middleware)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(skipInvalidEventsMiddleware)

	commandBus, err := command.NewBus(deps.Publisher, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating command bus: %w", err)
	}

	handler := event.NewHandler(
		commandBus,
		deps.NotificationRepo,
		deps.Mailer,
		deps.ProcessedStore,
		deps.Clock,
		deps.HandlerTimeout/2,
	)

	ep, err := cqrs.NewEventProcessorWithConfig(router, newEventProcessorConfig(deps))
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	handlers := []cqrs.EventHandler{
		cqrs.NewEventHandler("reserve-tickets", handler.ReserveTickets),
		cqrs.NewEventHandler("notify-event-created", handler.NotifyEventCreated),
		cqrs.NewEventHandler("notify-event-updated", handler.NotifyEventUpdated),
		cqrs.NewEventHandler("notify-event-published", handler.NotifyEventPublished),
		cqrs.NewEventHandler("notify-event-cancelled", handler.NotifyEventCancelled),
	}

	if err := ep.AddHandlers(handlers...); err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	rawHandlers := []struct {
		name    string
		topic   string
		handler message.NoPublishHandlerFunc
	}{
		{"record-payment-succeeded", contract.KeyPaymentSucceeded, handler.PaymentSucceeded},
		{"record-payment-failed", contract.KeyPaymentFailed, handler.PaymentFailed},
	}

	for _, h := range rawHandlers {
		sub, err := deps.NewSubscriber(consumerGroup(deps.ServiceName, h.name))
		if err != nil {
			return nil, fmt.Errorf("creating subscriber for %s: %w", h.name, err)
		}
		router.AddNoPublisherHandler(h.name, h.topic, sub, h.handler)
	}

	return &Router{router}, nil
}

func newEventProcessorConfig(deps RouterDeps) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return deps.NewSubscriber(consumerGroup(deps.ServiceName, params.HandlerName))
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return wire.Topic(params.EventName)
		},
		Marshaler:         wire.NewMarshaler(),
		AckOnUnknownEvent: true,
		Logger:            deps.Logger,
	}
}

func consumerGroup(serviceName, handlerName string) string {
	return serviceName + "." + handlerName
}
