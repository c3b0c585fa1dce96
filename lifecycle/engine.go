package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sathursan-S/Ticketer/clock"
	"github.com/Sathursan-S/Ticketer/contract"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxUpdateAttempts = 3

	defaultPageSize = 20
	maxPageSize     = 100
)

type EventRepo interface {
	Add(ctx context.Context, e entity.Event) error
	Get(ctx context.Context, eventID string) (entity.Event, error)
	Update(ctx context.Context, e entity.Event) (entity.Event, error)
	List(ctx context.Context, q entity.EventQuery) ([]entity.Event, int, error)
}

type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type Authorizer interface {
	IsAuthorized(p entity.Principal, role entity.Role) bool
}

// Outcome is the result of a committed mutation. Warning is set when the
// resulting messages could not be handed to the broker.
type Outcome struct {
	Event   entity.Event
	Warning *entity.NotificationDeliveryWarning
}

func (o Outcome) NotificationStatus() string {
	if o.Warning != nil {
		return "failure"
	}
	return "success"
}

type Engine struct {
	repo       EventRepo
	publisher  Publisher
	authorizer Authorizer
	clock      clock.Clock
	tracer     trace.Tracer
}

func NewEngine(repo EventRepo, publisher Publisher, authorizer Authorizer, c clock.Clock) *Engine {
	if c == nil {
		c = clock.NewSystem()
	}

	return &Engine{
		repo:       repo,
		publisher:  publisher,
		authorizer: authorizer,
		clock:      c,
		tracer:     otel.Tracer("ticketer/lifecycle"),
	}
}

type emitter func(entity.Event) any

func emit[T any](build func(entity.Event) T) emitter {
	return func(e entity.Event) any {
		return build(e)
	}
}

func (en *Engine) Create(ctx context.Context, p entity.Principal, spec entity.EventSpec) (out Outcome, err error) {
	ctx, span := en.startSpan(ctx, "lifecycle.Create", "")
	defer func() { endSpan(span, err) }()

	if err := en.authorize(p, entity.RoleOrganizer, "create events"); err != nil {
		return Outcome{}, err
	}
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}

	category, _ := entity.ParseCategory(spec.Category)
	now := en.clock.Now()
	e := entity.Event{
		ID:             uuid.NewString(),
		OrganizerID:    p.ID,
		OrganizerEmail: p.Email,
		Status:         entity.StatusPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	applySpec(&e, spec, category)

	if err := en.repo.Add(ctx, e); err != nil {
		return Outcome{}, fmt.Errorf("adding event: %w", err)
	}
	span.SetAttributes(attribute.String("event.id", e.ID))

	log.FromContext(ctx).WithField("event_id", e.ID).Info("Event created")

	return en.propagate(ctx, e, emit(contract.NewEventCreated)), nil
}

func (en *Engine) Update(ctx context.Context, p entity.Principal, eventID string, spec entity.EventSpec) (out Outcome, err error) {
	ctx, span := en.startSpan(ctx, "lifecycle.Update", eventID)
	defer func() { endSpan(span, err) }()

	if err := en.authorize(p, entity.RoleOrganizer, "update events"); err != nil {
		return Outcome{}, err
	}
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	category, _ := entity.ParseCategory(spec.Category)

	e, emitters, err := en.mutate(ctx, eventID, func(e *entity.Event) ([]emitter, error) {
		if e.Status == entity.StatusCancelled {
			return nil, entity.InvalidStateError{Status: e.Status, Action: "update"}
		}
		if spec.TicketCapacity < e.TicketsSold {
			return nil, entity.ValidationError{Problems: []entity.FieldProblem{{
				Field:   "ticket_capacity",
				Problem: fmt.Sprintf("must not be below the %d tickets already sold", e.TicketsSold),
			}}}
		}

		var transition emitter
		if spec.Status != nil && *spec.Status != e.Status {
			next := *spec.Status
			if !e.Status.CanTransitionTo(next) {
				return nil, entity.InvalidStateError{Status: e.Status, Action: "move to " + string(next)}
			}
			e.Status = next
			transition = transitionEmitter(next)
		}

		applySpec(e, spec, category)

		emitters := []emitter{emit(contract.NewEventUpdated)}
		if transition != nil {
			emitters = append(emitters, transition)
		}
		return emitters, nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.FromContext(ctx).WithField("event_id", e.ID).Info("Event updated")

	return en.propagate(ctx, e, emitters...), nil
}

func (en *Engine) Publish(ctx context.Context, p entity.Principal, eventID string) (out Outcome, err error) {
	ctx, span := en.startSpan(ctx, "lifecycle.Publish", eventID)
	defer func() { endSpan(span, err) }()

	if err := en.authorize(p, entity.RoleOrganizer, "publish events"); err != nil {
		return Outcome{}, err
	}

	e, emitters, err := en.mutate(ctx, eventID, func(e *entity.Event) ([]emitter, error) {
		if !e.Status.CanTransitionTo(entity.StatusActive) {
			return nil, entity.InvalidStateError{Status: e.Status, Action: "publish"}
		}
		e.Status = entity.StatusActive
		return []emitter{emit(contract.NewEventPublished)}, nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.FromContext(ctx).WithField("event_id", e.ID).Info("Event published")

	return en.propagate(ctx, e, emitters...), nil
}

func (en *Engine) Cancel(ctx context.Context, p entity.Principal, eventID string) (out Outcome, err error) {
	ctx, span := en.startSpan(ctx, "lifecycle.Cancel", eventID)
	defer func() { endSpan(span, err) }()

	if err := en.authorize(p, entity.RoleOrganizer, "cancel events"); err != nil {
		return Outcome{}, err
	}

	e, emitters, err := en.mutate(ctx, eventID, func(e *entity.Event) ([]emitter, error) {
		if !e.Status.CanTransitionTo(entity.StatusCancelled) {
			return nil, entity.InvalidStateError{Status: e.Status, Action: "cancel"}
		}
		e.Status = entity.StatusCancelled
		return []emitter{emit(contract.NewEventCancelled)}, nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.FromContext(ctx).WithField("event_id", e.ID).Info("Event cancelled")

	return en.propagate(ctx, e, emitters...), nil
}

// GetPublic returns an event only while it is ACTIVE.
func (en *Engine) GetPublic(ctx context.Context, eventID string) (entity.EventView, error) {
	e, err := en.repo.Get(ctx, eventID)
	if err != nil {
		return entity.EventView{}, fmt.Errorf("getting event: %w", err)
	}
	if e.Status != entity.StatusActive {
		return entity.EventView{}, entity.NotFoundError{ID: eventID}
	}
	return e.View(), nil
}

func (en *Engine) GetAny(ctx context.Context, p entity.Principal, eventID string) (entity.Event, error) {
	if err := en.authorize(p, entity.RoleOrganizer, "read unpublished events"); err != nil {
		return entity.Event{}, err
	}

	e, err := en.repo.Get(ctx, eventID)
	if err != nil {
		return entity.Event{}, fmt.Errorf("getting event: %w", err)
	}
	return e, nil
}

// ListPublic lists ACTIVE events. Unknown categories are ignored rather than
// rejected, and a missing date bound defaults to one year around now.
func (en *Engine) ListPublic(ctx context.Context, filter entity.EventFilter, page entity.Page) (entity.EventPage, error) {
	now := en.clock.Now()

	q := entity.EventQuery{
		Status: entity.StatusActive,
		From:   now.AddDate(-1, 0, 0),
		To:     now.AddDate(1, 0, 0),
		Text:   filter.Text,
	}
	if category, ok := entity.ParseCategory(filter.Category); ok {
		q.Category = category
	} else if filter.Category != "" {
		log.FromContext(ctx).WithField("category", filter.Category).Debug("Ignoring unknown category filter")
	}
	if filter.From != nil {
		q.From = *filter.From
	}
	if filter.To != nil {
		q.To = *filter.To
	}

	return en.list(ctx, q, page)
}

// ListAll lists events in every status for organizers and admins.
func (en *Engine) ListAll(ctx context.Context, p entity.Principal, page entity.Page) (entity.EventPage, error) {
	if err := en.authorize(p, entity.RoleOrganizer, "list all events"); err != nil {
		return entity.EventPage{}, err
	}

	return en.list(ctx, entity.EventQuery{}, page)
}

func (en *Engine) list(ctx context.Context, q entity.EventQuery, page entity.Page) (entity.EventPage, error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = defaultPageSize
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	q.Limit = page.Size
	q.Offset = (page.Number - 1) * page.Size

	events, total, err := en.repo.List(ctx, q)
	if err != nil {
		return entity.EventPage{}, fmt.Errorf("listing events: %w", err)
	}

	views := make([]entity.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, e.View())
	}

	return entity.EventPage{
		Events:     views,
		PageNumber: page.Number,
		PageSize:   page.Size,
		Total:      total,
	}, nil
}

// mutate runs a read-modify-write against the store, retrying when another
// writer bumped the version in between.
func (en *Engine) mutate(
	ctx context.Context,
	eventID string,
	apply func(e *entity.Event) ([]emitter, error),
) (entity.Event, []emitter, error) {
	for attempt := 1; ; attempt++ {
		current, err := en.repo.Get(ctx, eventID)
		if err != nil {
			return entity.Event{}, nil, fmt.Errorf("getting event: %w", err)
		}

		next := current
		emitters, err := apply(&next)
		if err != nil {
			return entity.Event{}, nil, err
		}
		next.UpdatedAt = en.updatedAt(current.UpdatedAt)

		updated, err := en.repo.Update(ctx, next)
		if errors.Is(err, entity.ErrConcurrentUpdate) && attempt < maxUpdateAttempts {
			log.FromContext(ctx).WithField("event_id", eventID).WithField("attempt", attempt).Warn("Concurrent update, retrying")
			continue
		}
		if err != nil {
			return entity.Event{}, nil, fmt.Errorf("updating event: %w", err)
		}

		return updated, emitters, nil
	}
}

// propagate hands the messages to the broker. Failures never undo the
// committed mutation; they are reported as a warning instead.
func (en *Engine) propagate(ctx context.Context, e entity.Event, emitters ...emitter) Outcome {
	out := Outcome{Event: e}

	for _, build := range emitters {
		msg := build(e)
		typ, _ := contract.TypeOf(msg)

		if err := en.publisher.Publish(ctx, msg); err != nil {
			log.FromContext(ctx).
				WithError(err).
				WithField("event_id", e.ID).
				WithField("message_type", typ).
				Warn("Failed to publish lifecycle message")

			if out.Warning == nil {
				out.Warning = &entity.NotificationDeliveryWarning{MessageType: string(typ), Err: err}
			}
		}
	}

	return out
}

func (en *Engine) authorize(p entity.Principal, role entity.Role, action string) error {
	if en.authorizer == nil || !en.authorizer.IsAuthorized(p, role) {
		return entity.ForbiddenError{PrincipalID: p.ID, Action: action}
	}
	return nil
}

func (en *Engine) updatedAt(previous time.Time) time.Time {
	now := en.clock.Now()
	if now.Before(previous) {
		return previous
	}
	return now
}

func (en *Engine) startSpan(ctx context.Context, name, eventID string) (context.Context, trace.Span) {
	ctx, span := en.tracer.Start(ctx, name)
	if eventID != "" {
		span.SetAttributes(attribute.String("event.id", eventID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func transitionEmitter(next entity.Status) emitter {
	switch next {
	case entity.StatusActive:
		return emit(contract.NewEventPublished)
	case entity.StatusCancelled:
		return emit(contract.NewEventCancelled)
	default:
		return nil
	}
}

func applySpec(e *entity.Event, spec entity.EventSpec, category entity.Category) {
	e.Name = spec.Name
	e.Category = category
	e.Description = spec.Description
	e.Venue = spec.Venue
	e.Schedule = spec.Schedule
	e.Schedule.StartAt = spec.Schedule.StartAt.UTC()
	e.TicketPrice = spec.TicketPrice
	e.TicketCapacity = spec.TicketCapacity
}
