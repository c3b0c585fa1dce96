// Package wire holds the broker encoding shared by publishers and processors.
package wire

import (
	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberFactory builds a subscriber reading with the given consumer group.
// Every handler gets its own group, so each one sees every message on its
// routing key.
type SubscriberFactory func(consumerGroup string) (message.Subscriber, error)

// Marshaler encodes contract values as JSON named after their struct.
// Payloads that cannot be decoded surface as entity.ParseError.
type Marshaler struct {
	cqrs.JSONMarshaler
}

func NewMarshaler() Marshaler {
	return Marshaler{
		JSONMarshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
	}
}

func (m Marshaler) Unmarshal(msg *message.Message, v interface{}) error {
	if err := m.JSONMarshaler.Unmarshal(msg, v); err != nil {
		return entity.ParseError{Reason: "decoding " + m.Name(v), Err: err}
	}
	return nil
}

func Topic(name string) (string, error) {
	return contract.RoutingKey(name)
}
