package contract

import (
	"fmt"

	"github.com/Sathursan-S/Ticketer/entity"
)

type EventCreated struct {
	Header         Header `json:"header"`
	EventID        string `json:"event_id"`
	EventName      string `json:"event_name"`
	OrganizerEmail string `json:"organizer_email"`
	TicketCapacity int    `json:"ticket_capacity"`
}

func NewEventCreated(e entity.Event) EventCreated {
	return EventCreated{
		Header:         NewHeader(idempotencyKey(e)),
		EventID:        e.ID,
		EventName:      e.Name,
		OrganizerEmail: e.OrganizerEmail,
		TicketCapacity: e.TicketCapacity,
	}
}

type EventUpdated struct {
	Header         Header `json:"header"`
	EventID        string `json:"event_id"`
	EventName      string `json:"event_name"`
	OrganizerEmail string `json:"organizer_email"`
	TicketCapacity int    `json:"ticket_capacity"`
	Status         string `json:"status"`
}

func NewEventUpdated(e entity.Event) EventUpdated {
	return EventUpdated{
		Header:         NewHeader(idempotencyKey(e)),
		EventID:        e.ID,
		EventName:      e.Name,
		OrganizerEmail: e.OrganizerEmail,
		TicketCapacity: e.TicketCapacity,
		Status:         string(e.Status),
	}
}

type EventPublished struct {
	Header         Header `json:"header"`
	EventID        string `json:"event_id"`
	EventName      string `json:"event_name"`
	OrganizerEmail string `json:"organizer_email"`
}

func NewEventPublished(e entity.Event) EventPublished {
	return EventPublished{
		Header:         NewHeader(idempotencyKey(e)),
		EventID:        e.ID,
		EventName:      e.Name,
		OrganizerEmail: e.OrganizerEmail,
	}
}

// EventCancelled travels on the event.deleted routing key; events are never
// physically removed.
type EventCancelled struct {
	Header         Header `json:"header"`
	EventID        string `json:"event_id"`
	EventName      string `json:"event_name"`
	OrganizerEmail string `json:"organizer_email"`
}

func NewEventCancelled(e entity.Event) EventCancelled {
	return EventCancelled{
		Header:         NewHeader(idempotencyKey(e)),
		EventID:        e.ID,
		EventName:      e.Name,
		OrganizerEmail: e.OrganizerEmail,
	}
}

func idempotencyKey(e entity.Event) string {
	return fmt.Sprintf("%s:%d", e.ID, e.Version)
}
