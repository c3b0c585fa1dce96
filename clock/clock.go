package clock

import (
	"sync"
	"time"
)

// Clock lets the lifecycle engine and consumers take time as a dependency.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests.
type Fixed struct {
	lock sync.Mutex
	now  time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.now
}

func (f *Fixed) Set(t time.Time) {
	f.lock.Lock()
	f.now = t.UTC()
	f.lock.Unlock()
}
