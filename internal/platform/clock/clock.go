package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Scheduler is the timing surface of the focus engine: a wall clock, one-shot
// callbacks and a notification fired when the host comes back from a
// suspension (terminal focus, SIGCONT, machine wake-up).
type Scheduler interface {
	Clock
	After(d time.Duration, fn func()) (stop func())
	OnResume(fn func()) (remove func())
}

type SystemClock struct{}

// Now strips the monotonic reading (UTC does that) so durations measured
// between two readings include time the host spent suspended.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemScheduler runs callbacks on time.AfterFunc goroutines. Resume
// listeners are fired by whatever adapter observes the host waking up.
type SystemScheduler struct {
	SystemClock

	mu        sync.Mutex
	listeners map[int]func()
	next      int
}

func NewSystemScheduler() *SystemScheduler {
	return &SystemScheduler{listeners: map[int]func(){}}
}

func (s *SystemScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (s *SystemScheduler) OnResume(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// NotifyResume fires every registered resume listener.
func (s *SystemScheduler) NotifyResume() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Listeners reports how many resume listeners are registered.
func (s *SystemScheduler) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
