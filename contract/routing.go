package contract

import "fmt"

type Type string

const (
	TypeEventCreated      Type = "EventCreated"
	TypeEventUpdated      Type = "EventUpdated"
	TypeEventPublished    Type = "EventPublished"
	TypeEventCancelled    Type = "EventCancelled"
	TypeCreateEventTicket Type = "CreateEventTicket"
	TypePaymentSucceeded  Type = "PaymentSucceeded"
	TypePaymentFailed     Type = "PaymentFailed"
)

const (
	KeyEventCreated      = "event.created"
	KeyEventUpdated      = "event.updated"
	KeyEventPublished    = "event.published"
	KeyEventDeleted      = "event.deleted"
	KeyCreateEventTicket = "event.ticket.create"
	KeyPaymentSucceeded  = "payment.succeeded"
	KeyPaymentFailed     = "payment.failed"

	KeyDeadLetter = "event.dead-letter"
)

var routingKeys = map[Type]string{
	TypeEventCreated:      KeyEventCreated,
	TypeEventUpdated:      KeyEventUpdated,
	TypeEventPublished:    KeyEventPublished,
	TypeEventCancelled:    KeyEventDeleted,
	TypeCreateEventTicket: KeyCreateEventTicket,
	TypePaymentSucceeded:  KeyPaymentSucceeded,
	TypePaymentFailed:     KeyPaymentFailed,
}

// RoutingKey resolves the broker topic of a message type. Unknown types are an
// error, never a default topic.
func RoutingKey(name string) (string, error) {
	key, ok := routingKeys[Type(name)]
	if !ok {
		return "", fmt.Errorf("no routing key for message type %q", name)
	}
	return key, nil
}

// TypeOf names the message type of a contract value.
func TypeOf(msg any) (Type, bool) {
	switch msg.(type) {
	case EventCreated, *EventCreated:
		return TypeEventCreated, true
	case EventUpdated, *EventUpdated:
		return TypeEventUpdated, true
	case EventPublished, *EventPublished:
		return TypeEventPublished, true
	case EventCancelled, *EventCancelled:
		return TypeEventCancelled, true
	case CreateEventTicket, *CreateEventTicket:
		return TypeCreateEventTicket, true
	case PaymentSucceeded, *PaymentSucceeded:
		return TypePaymentSucceeded, true
	case PaymentFailed, *PaymentFailed:
		return TypePaymentFailed, true
	default:
		return "", false
	}
}
