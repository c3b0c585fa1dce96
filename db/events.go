package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const eventColumns = `event_id, organizer_id, organizer_email, name, category, description,
	venue_name, venue_address_line1, venue_address_line2, venue_city, venue_country,
	start_at, duration_minutes, sales_start_at, sales_end_at,
	ticket_price, ticket_capacity, tickets_sold, status, version, created_at, updated_at`

type eventRow struct {
	ID                string          `db:"event_id"`
	OrganizerID       string          `db:"organizer_id"`
	OrganizerEmail    string          `db:"organizer_email"`
	Name              string          `db:"name"`
	Category          string          `db:"category"`
	Description       string          `db:"description"`
	VenueName         string          `db:"venue_name"`
	VenueAddressLine1 string          `db:"venue_address_line1"`
	VenueAddressLine2 string          `db:"venue_address_line2"`
	VenueCity         string          `db:"venue_city"`
	VenueCountry      string          `db:"venue_country"`
	StartAt           time.Time       `db:"start_at"`
	DurationMinutes   int             `db:"duration_minutes"`
	SalesStartAt      sql.NullTime    `db:"sales_start_at"`
	SalesEndAt        sql.NullTime    `db:"sales_end_at"`
	TicketPrice       decimal.Decimal `db:"ticket_price"`
	TicketCapacity    int             `db:"ticket_capacity"`
	TicketsSold       int             `db:"tickets_sold"`
	Status            string          `db:"status"`
	Version           int             `db:"version"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r eventRow) toEntity() entity.Event {
	return entity.Event{
		ID:             r.ID,
		OrganizerID:    r.OrganizerID,
		OrganizerEmail: r.OrganizerEmail,
		Name:           r.Name,
		Category:       entity.Category(r.Category),
		Description:    r.Description,
		Venue: entity.Venue{
			Name:         r.VenueName,
			AddressLine1: r.VenueAddressLine1,
			AddressLine2: r.VenueAddressLine2,
			City:         r.VenueCity,
			Country:      r.VenueCountry,
		},
		Schedule: entity.Schedule{
			StartAt:         r.StartAt.UTC(),
			DurationMinutes: r.DurationMinutes,
			SalesStartAt:    fromNullTime(r.SalesStartAt),
			SalesEndAt:      fromNullTime(r.SalesEndAt),
		},
		TicketPrice:    r.TicketPrice,
		TicketCapacity: r.TicketCapacity,
		TicketsSold:    r.TicketsSold,
		Status:         entity.Status(r.Status),
		Version:        r.Version,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) EventRepo {
	return EventRepo{
		db: db,
	}
}

func (r EventRepo) Add(ctx context.Context, e entity.Event) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`),
		e.ID, e.OrganizerID, e.OrganizerEmail, e.Name, string(e.Category), e.Description,
		e.Venue.Name, e.Venue.AddressLine1, e.Venue.AddressLine2, e.Venue.City, e.Venue.Country,
		e.Schedule.StartAt.UTC(), e.Schedule.DurationMinutes, toNullTime(e.Schedule.SalesStartAt), toNullTime(e.Schedule.SalesEndAt),
		e.TicketPrice, e.TicketCapacity, e.TicketsSold, string(e.Status), e.Version, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r EventRepo) Get(ctx context.Context, eventID string) (entity.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE event_id = ?`), eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, entity.NotFoundError{ID: eventID}
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("selecting event: %w", err)
	}

	return row.toEntity(), nil
}

// Update writes e when the stored version still equals e.Version and returns
// the event with its version bumped.
func (r EventRepo) Update(ctx context.Context, e entity.Event) (entity.Event, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE events SET
		name = ?, category = ?, description = ?,
		venue_name = ?, venue_address_line1 = ?, venue_address_line2 = ?, venue_city = ?, venue_country = ?,
		start_at = ?, duration_minutes = ?, sales_start_at = ?, sales_end_at = ?,
		ticket_price = ?, ticket_capacity = ?, tickets_sold = ?, status = ?,
		version = version + 1, updated_at = ?
		WHERE event_id = ? AND version = ?`),
		e.Name, string(e.Category), e.Description,
		e.Venue.Name, e.Venue.AddressLine1, e.Venue.AddressLine2, e.Venue.City, e.Venue.Country,
		e.Schedule.StartAt.UTC(), e.Schedule.DurationMinutes, toNullTime(e.Schedule.SalesStartAt), toNullTime(e.Schedule.SalesEndAt),
		e.TicketPrice, e.TicketCapacity, e.TicketsSold, string(e.Status),
		e.UpdatedAt.UTC(),
		e.ID, e.Version)
	if err != nil {
		return entity.Event{}, fmt.Errorf("executing update query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return entity.Event{}, fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, e.ID); err != nil {
			return entity.Event{}, err
		}
		return entity.Event{}, entity.ErrConcurrentUpdate
	}

	e.Version++
	return e, nil
}

func (r EventRepo) List(ctx context.Context, q entity.EventQuery) ([]entity.Event, int, error) {
	var (
		where []string
		args  []any
	)

	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if !q.From.IsZero() {
		where = append(where, "start_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		where = append(where, "start_at <= ?")
		args = append(args, q.To.UTC())
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM events`+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT `+eventColumns+` FROM events`+clause+
		` ORDER BY start_at, event_id LIMIT ? OFFSET ?`), append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("selecting events: %w", err)
	}

	events := make([]entity.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEntity())
	}

	return events, total, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
