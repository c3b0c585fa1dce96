package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sathursan-S/Ticketer/clock"
	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CommandSender interface {
	Send(ctx context.Context, cmd any) error
}

type NotificationRepo interface {
	Add(ctx context.Context, n entity.NotificationRecord) (bool, error)
	Exists(ctx context.Context, correlationKey string) (bool, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ProcessedStore interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Handler struct {
	commandBus    CommandSender
	notifications NotificationRepo
	mailer        Mailer
	processed     ProcessedStore
	clock         clock.Clock
	locks         *KeyLock
	mailTimeout   time.Duration
}

func NewHandler(
	cb CommandSender,
	nr NotificationRepo,
	m Mailer,
	ps ProcessedStore,
	c clock.Clock,
	mailTimeout time.Duration,
) Handler {
	if c == nil {
		c = clock.NewSystem()
	}

	return Handler{
		commandBus:    cb,
		notifications: nr,
		mailer:        m,
		processed:     ps,
		clock:         c,
		locks:         NewKeyLock(),
		mailTimeout:   mailTimeout,
	}
}

// ReserveTickets asks the ticket service to mint the inventory of a new event.
// A failed send is logged and the message acked.
func (h Handler) ReserveTickets(ctx context.Context, e *contract.EventCreated) error {
	if e.EventID == "" {
		return entity.ParseError{Reason: "EventCreated without event_id"}
	}

	logger := log.FromContext(ctx).WithField("event_id", e.EventID)

	if e.TicketCapacity <= 0 {
		logger.WithField("ticket_capacity", e.TicketCapacity).Warn("Skipping ticket reservation for event without capacity")
		return nil
	}

	key := "reserve-tickets:" + e.Header.DedupKey()
	unlock := h.locks.Lock(key)
	defer unlock()

	first, err := h.processed.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("claiming message: %w", err)
	}
	if !first {
		logger.Info("Tickets already requested, skipping duplicate")
		return nil
	}

	cmd := contract.NewCreateEventTicket(e.Header.DedupKey(), e.EventID, e.TicketCapacity)
	if err := h.commandBus.Send(ctx, cmd); err != nil {
		logger.WithError(err).Error("Failed to request ticket creation")

		if err := h.processed.Release(ctx, key); err != nil {
			logger.WithError(err).Warn("Failed to release processed marker")
		}
		return nil
	}

	logger.WithField("number_of_tickets", e.TicketCapacity).Info("Ticket creation requested")
	return nil
}

func (h Handler) NotifyEventCreated(ctx context.Context, e *contract.EventCreated) error {
	return h.notify(ctx, notification{
		correlationKey: correlationKey(contract.TypeEventCreated, e.Header),
		sourceID:       e.EventID,
		recipient:      e.OrganizerEmail,
		subject:        "Event Created",
		body:           fmt.Sprintf("Your event '%s' (ID: %s) has been created successfully.", e.EventName, e.EventID),
	})
}

func (h Handler) NotifyEventUpdated(ctx context.Context, e *contract.EventUpdated) error {
	return h.notify(ctx, notification{
		correlationKey: correlationKey(contract.TypeEventUpdated, e.Header),
		sourceID:       e.EventID,
		recipient:      e.OrganizerEmail,
		subject:        "Event Updated",
		body:           fmt.Sprintf("Your event '%s' (ID: %s) has been updated.", e.EventName, e.EventID),
	})
}

func (h Handler) NotifyEventPublished(ctx context.Context, e *contract.EventPublished) error {
	return h.notify(ctx, notification{
		correlationKey: correlationKey(contract.TypeEventPublished, e.Header),
		sourceID:       e.EventID,
		recipient:      e.OrganizerEmail,
		subject:        "Event Published",
		body:           fmt.Sprintf("Your event '%s' (ID: %s) is now live and open for bookings.", e.EventName, e.EventID),
	})
}

func (h Handler) NotifyEventCancelled(ctx context.Context, e *contract.EventCancelled) error {
	return h.notify(ctx, notification{
		correlationKey: correlationKey(contract.TypeEventCancelled, e.Header),
		sourceID:       e.EventID,
		recipient:      e.OrganizerEmail,
		subject:        "Event Cancelled",
		body:           fmt.Sprintf("Your event '%s' (ID: %s) has been cancelled.", e.EventName, e.EventID),
	})
}

type notification struct {
	correlationKey string
	sourceID       string
	recipient      string
	subject        string
	body           string
}

func correlationKey(t contract.Type, h contract.Header) string {
	return string(t) + ":" + h.DedupKey()
}

// notify sends at most one mail per correlation key and always records the
// attempt. Only a storage failure is returned, so the broker retries it.
func (h Handler) notify(ctx context.Context, n notification) error {
	if n.sourceID == "" {
		return entity.ParseError{Reason: "lifecycle message without event_id"}
	}

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":        n.sourceID,
		"correlation_key": n.correlationKey,
	})

	if strings.TrimSpace(n.recipient) == "" {
		logger.Warn("Skipping notification without recipient")
		return nil
	}

	unlock := h.locks.Lock(n.correlationKey)
	defer unlock()

	sent, err := h.notifications.Exists(ctx, n.correlationKey)
	if err != nil {
		return fmt.Errorf("checking notification log: %w", err)
	}
	if sent {
		logger.Info("Notification already recorded, skipping duplicate")
		return nil
	}

	record := entity.NotificationRecord{
		ID:             uuid.NewString(),
		Recipient:      n.recipient,
		Subject:        n.subject,
		Body:           n.body,
		SentAt:         h.clock.Now(),
		CorrelationKey: &n.correlationKey,
		SourceID:       n.sourceID,
		DeliveryStatus: entity.DeliverySent,
	}

	if err := h.send(ctx, n); err != nil {
		logger.WithError(err).Error("Failed to send notification mail")
		record.DeliveryStatus = entity.DeliveryFailed
		record.DeliveryError = err.Error()
	}

	inserted, err := h.notifications.Add(ctx, record)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	if !inserted {
		logger.Info("Notification recorded concurrently, keeping the first record")
	}

	return nil
}

func (h Handler) send(ctx context.Context, n notification) error {
	if h.mailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.mailTimeout)
		defer cancel()
	}

	return h.mailer.Send(ctx, n.recipient, n.subject, n.body)
}
