package message

import (
	"errors"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func correlationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = "gen_" + shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		msg.SetContext(ctx)

		return next(msg)
	}
}

func loggerMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := log.CorrelationIDFromContext(msg.Context())
		ctx := log.ToContext(msg.Context(), logrus.WithFields(logrus.Fields{
			"message_uuid":   msg.UUID,
			"correlation_id": correlationID,
			"handler":        message.HandlerNameFromCtx(msg.Context()),
		}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

func handlerLogMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context())
		logger.Info("Handling a message")

		msgs, err := next(msg)

		if err != nil {
			logger.WithError(err).Error("Message handling error")
		}

		return msgs, err
	}
}

// skipInvalidEventsMiddleware acks messages that can never be handled instead
// of retrying them into the dead letter topic.
func skipInvalidEventsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)

		var parseErr entity.ParseError
		if errors.As(err, &parseErr) {
			log.FromContext(msg.Context()).WithError(err).Warn("Dropping malformed message")
			return nil, nil
		}

		return msgs, err
	}
}

func newMetricsMiddleware() (message.HandlerMiddleware, error) {
	meter := otel.Meter("ticketer/message")

	handled, err := meter.Int64Counter("ticketer.messages.handled",
		metric.WithDescription("Number of consumed messages by handler and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msgs, err := next(msg)

			outcome := "ack"
			if err != nil {
				outcome = "error"
			}
			handled.Add(msg.Context(), 1, metric.WithAttributes(
				attribute.String("handler", message.HandlerNameFromCtx(msg.Context())),
				attribute.String("outcome", outcome),
			))

			return msgs, err
		}
	}, nil
}
