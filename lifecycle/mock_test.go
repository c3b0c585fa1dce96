package lifecycle_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Sathursan-S/Ticketer/entity"
)

type MockEventRepo struct {
	lock   sync.Mutex
	events map[string]entity.Event

	// conflicts makes the next n updates fail as if another writer won.
	conflicts int
	updates   int
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{events: map[string]entity.Event{}}
}

func (m *MockEventRepo) Add(_ context.Context, e entity.Event) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.events[e.ID] = e
	return nil
}

func (m *MockEventRepo) Get(_ context.Context, eventID string) (entity.Event, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return entity.Event{}, entity.NotFoundError{ID: eventID}
	}
	return e, nil
}

func (m *MockEventRepo) Update(_ context.Context, e entity.Event) (entity.Event, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.updates++

	stored, ok := m.events[e.ID]
	if !ok {
		return entity.Event{}, entity.NotFoundError{ID: e.ID}
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		m.events[e.ID] = stored
		return entity.Event{}, entity.ErrConcurrentUpdate
	}
	if stored.Version != e.Version {
		return entity.Event{}, entity.ErrConcurrentUpdate
	}

	e.Version++
	m.events[e.ID] = e
	return e, nil
}

func (m *MockEventRepo) List(_ context.Context, q entity.EventQuery) ([]entity.Event, int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var matching []entity.Event
	for _, e := range m.events {
		if q.Status != "" && e.Status != q.Status {
			continue
		}
		if !q.From.IsZero() && e.Schedule.StartAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.Schedule.StartAt.After(q.To) {
			continue
		}
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		if q.Text != "" {
			text := strings.ToLower(q.Text)
			if !strings.Contains(strings.ToLower(e.Name), text) && !strings.Contains(strings.ToLower(e.Description), text) {
				continue
			}
		}
		matching = append(matching, e)
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].Schedule.StartAt.Before(matching[j].Schedule.StartAt)
	})

	total := len(matching)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := min(q.Offset+q.Limit, total)

	return matching[q.Offset:end], total, nil
}

type MockPublisher struct {
	lock      sync.Mutex
	Published []any
	Err       error
}

func (m *MockPublisher) Publish(_ context.Context, event any) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockPublisher) Messages() []any {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]any(nil), m.Published...)
}

type MockAuthorizer struct {
	Allow bool
}

func (m MockAuthorizer) IsAuthorized(entity.Principal, entity.Role) bool {
	return m.Allow
}
