package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Sathursan-S/Ticketer/db"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func newEvent(name string, status entity.Status, startAt time.Time) entity.Event {
	salesStart := startAt.Add(-30 * 24 * time.Hour)
	return entity.Event{
		ID:             uuid.NewString(),
		OrganizerID:    "org-1",
		OrganizerEmail: "organizer@example.com",
		Name:           name,
		Category:       entity.CategoryConcert,
		Description:    "An evening of " + name,
		Venue: entity.Venue{
			Name:    "Nelum Pokuna",
			City:    "Colombo",
			Country: "LK",
		},
		Schedule: entity.Schedule{
			StartAt:         startAt,
			DurationMinutes: 90,
			SalesStartAt:    &salesStart,
		},
		TicketPrice:    decimal.RequireFromString("1500.50"),
		TicketCapacity: 200,
		Status:         status,
		Version:        1,
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
	}
}

func TestEventRepo_AddGet(t *testing.T) {
	ctx := context.Background()
	r := db.NewEventRepo(newTestDB(t))

	e := newEvent("Jazz", entity.StatusPending, baseTime.Add(48*time.Hour))
	require.NoError(t, r.Add(ctx, e))

	got, err := r.Get(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Venue, got.Venue)
	assert.True(t, e.TicketPrice.Equal(got.TicketPrice), "price %s", got.TicketPrice)
	assert.True(t, e.Schedule.StartAt.Equal(got.Schedule.StartAt))
	require.NotNil(t, got.Schedule.SalesStartAt)
	assert.True(t, e.Schedule.SalesStartAt.Equal(*got.Schedule.SalesStartAt))
	assert.Nil(t, got.Schedule.SalesEndAt)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, 1, got.Version)
}

func TestEventRepo_Get_notFound(t *testing.T) {
	r := db.NewEventRepo(newTestDB(t))

	_, err := r.Get(context.Background(), uuid.NewString())

	var nf entity.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestEventRepo_Update_version(t *testing.T) {
	ctx := context.Background()
	r := db.NewEventRepo(newTestDB(t))

	e := newEvent("Rock", entity.StatusPending, baseTime.Add(24*time.Hour))
	require.NoError(t, r.Add(ctx, e))

	changed := e
	changed.Status = entity.StatusActive
	changed.UpdatedAt = baseTime.Add(time.Minute)

	updated, err := r.Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	_, err = r.Update(ctx, changed)
	assert.ErrorIs(t, err, entity.ErrConcurrentUpdate)

	got, err := r.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, got.Status)
	assert.Equal(t, 2, got.Version)

	missing := newEvent("Ghost", entity.StatusPending, baseTime)
	_, err = r.Update(ctx, missing)
	var nf entity.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestEventRepo_Update_soldOverCapacityRejected(t *testing.T) {
	ctx := context.Background()
	r := db.NewEventRepo(newTestDB(t))

	e := newEvent("Folk", entity.StatusActive, baseTime)
	require.NoError(t, r.Add(ctx, e))

	e.TicketsSold = e.TicketCapacity + 1
	_, err := r.Update(ctx, e)
	assert.Error(t, err)
}

func TestEventRepo_List(t *testing.T) {
	ctx := context.Background()
	r := db.NewEventRepo(newTestDB(t))

	jazz := newEvent("Jazz Evening", entity.StatusActive, baseTime.Add(24*time.Hour))
	rock := newEvent("Rock Night", entity.StatusActive, baseTime.Add(48*time.Hour))
	rock.Category = entity.CategoryFestival
	pending := newEvent("Jazz Draft", entity.StatusPending, baseTime.Add(24*time.Hour))
	past := newEvent("Old Jazz", entity.StatusActive, baseTime.Add(-3*365*24*time.Hour))

	for _, e := range []entity.Event{jazz, rock, pending, past} {
		require.NoError(t, r.Add(ctx, e))
	}

	query := entity.EventQuery{
		Status: entity.StatusActive,
		From:   baseTime.AddDate(-1, 0, 0),
		To:     baseTime.AddDate(1, 0, 0),
		Limit:  10,
	}

	events, total, err := r.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, events, 2)
	assert.Equal(t, jazz.ID, events[0].ID)
	assert.Equal(t, rock.ID, events[1].ID)

	byText := query
	byText.Text = "JAZZ"
	events, total, err = r.List(ctx, byText)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, jazz.ID, events[0].ID)

	byCategory := query
	byCategory.Category = entity.CategoryFestival
	events, _, err = r.List(ctx, byCategory)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, rock.ID, events[0].ID)

	paged := query
	paged.Limit = 1
	paged.Offset = 1
	events, total, err = r.List(ctx, paged)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, events, 1)
	assert.Equal(t, rock.ID, events[0].ID)

	events, total, err = r.List(ctx, entity.EventQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, events, 4)
	assert.Equal(t, past.ID, events[0].ID)
}
