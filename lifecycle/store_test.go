package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Sathursan-S/Ticketer/auth"
	"github.com/Sathursan-S/Ticketer/clock"
	"github.com/Sathursan-S/Ticketer/db"
	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/Sathursan-S/Ticketer/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_concurrentWritesOnStore(t *testing.T) {
	ctx := context.Background()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	require.NoError(t, db.InitialiseDB(ctx, conn))

	repo := db.NewEventRepo(conn)
	publisher := &MockPublisher{}
	engine := lifecycle.NewEngine(repo, publisher, auth.RoleAuthorizer{}, clock.NewSystem())

	out, err := engine.Create(ctx, organizer, validSpec())
	require.NoError(t, err)
	eventID := out.Event.ID

	const writers = 8

	var (
		wg         sync.WaitGroup
		lock       sync.Mutex
		cancels    int
		updates    int
		unexpected []error
	)

	record := func(counter *int, err error) {
		lock.Lock()
		defer lock.Unlock()

		var stateErr entity.InvalidStateError
		switch {
		case err == nil:
			*counter++
		case errors.As(err, &stateErr), errors.Is(err, entity.ErrConcurrentUpdate):
		default:
			unexpected = append(unexpected, err)
		}
	}

	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := engine.Cancel(ctx, organizer, eventID)
			record(&cancels, err)
		}()
		go func(i int) {
			defer wg.Done()
			spec := validSpec()
			spec.Name = fmt.Sprintf("Jazz Night %d", i)
			spec.TicketCapacity = 100 + i
			_, err := engine.Update(ctx, organizer, eventID, spec)
			record(&updates, err)
		}(i)
	}
	wg.Wait()

	require.Empty(t, unexpected)

	final, err := repo.Get(ctx, eventID)
	require.NoError(t, err)

	assert.LessOrEqual(t, cancels, 1, "only one cancel can win")
	assert.Equal(t, cancels == 1, final.Status == entity.StatusCancelled)
	assert.Equal(t, 1+cancels+updates, final.Version, "every successful write bumps the version once")
	assert.LessOrEqual(t, final.TicketsSold, final.TicketCapacity)

	// one EventCreated, one EventCancelled per cancel and one EventUpdated per update
	assert.Len(t, publisher.Messages(), 1+cancels+updates)
}
