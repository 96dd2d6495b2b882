// Package clocktest provides a manually driven Scheduler for tests.
package clocktest

import (
	"sort"
	"sync"
	"time"
)

type timer struct {
	id  int
	at  time.Time
	fn  func()
	off bool
}

// FakeScheduler never sleeps. Advance moves the clock and fires due timers in
// order; Jump moves the clock without firing anything, which is what a
// throttled or suspended host looks like to the engine.
type FakeScheduler struct {
	mu        sync.Mutex
	now       time.Time
	timers    []*timer
	listeners map[int]func()
	nextID    int
	fired     int
}

func New(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start, listeners: map[int]func(){}}
}

func (f *FakeScheduler) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeScheduler) After(d time.Duration, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &timer{id: f.nextID, at: f.now.Add(d), fn: fn}
	f.nextID++
	f.timers = append(f.timers, t)
	return func() {
		f.mu.Lock()
		t.off = true
		f.mu.Unlock()
	}
}

func (f *FakeScheduler) OnResume(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing timers as their deadline is
// reached. Timers armed by fired callbacks are honoured within the same call.
// A timer left overdue by Jump fires at the current time.
func (f *FakeScheduler) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()
	for {
		f.mu.Lock()
		next := f.popDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		if next.at.After(f.now) {
			f.now = next.at
		}
		f.fired++
		f.mu.Unlock()
		next.fn()
	}
}

// Jump sets the clock forward by d without firing any timer.
func (f *FakeScheduler) Jump(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Resume fires the resume listeners, as a host coming back to the foreground.
func (f *FakeScheduler) Resume() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Pending reports the number of armed, not yet fired timers.
func (f *FakeScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.off {
			n++
		}
	}
	return n
}

// Fired reports how many timer callbacks have run.
func (f *FakeScheduler) Fired() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired
}

func (f *FakeScheduler) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *FakeScheduler) popDueLocked(target time.Time) *timer {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.off {
			live = append(live, t)
		}
	}
	f.timers = live
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].at.Equal(f.timers[j].at) {
			return f.timers[i].id < f.timers[j].id
		}
		return f.timers[i].at.Before(f.timers[j].at)
	})
	if len(f.timers) == 0 || f.timers[0].at.After(target) {
		return nil
	}
	t := f.timers[0]
	f.timers = f.timers[1:]
	return t
}
