package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	"studyo/internal/platform/id"
)

const defaultCommitTimeout = 15 * time.Second

// Committer submits finished Work intervals in the background. A failed
// submission is logged and dropped; the timer never waits on it.
type Committer struct {
	gateway pomodoroout.SessionGateway
	ids     id.Generator
	logger  *slog.Logger
	timeout time.Duration

	mu        sync.Mutex
	inflight  map[string]chan struct{}
	listeners map[int]func(domain.StudySession, domain.SessionRecord)
	nextID    int
}

func NewCommitter(gateway pomodoroout.SessionGateway, ids id.Generator, logger *slog.Logger, timeout time.Duration) *Committer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultCommitTimeout
	}
	return &Committer{
		gateway:   gateway,
		ids:       ids,
		logger:    logger,
		timeout:   timeout,
		inflight:  map[string]chan struct{}{},
		listeners: map[int]func(domain.StudySession, domain.SessionRecord){},
	}
}

// OnCommitted registers fn to run, on the commit goroutine, after each
// successful submission.
func (c *Committer) OnCommitted(fn func(domain.StudySession, domain.SessionRecord)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.nextID
	c.nextID++
	c.listeners[key] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, key)
		c.mu.Unlock()
	}
}

// Dispatch returns immediately.
func (c *Committer) Dispatch(session domain.StudySession) {
	commitID := c.ids.New()
	done := make(chan struct{})
	c.mu.Lock()
	c.inflight[commitID] = done
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, commitID)
			c.mu.Unlock()
			close(done)
		}()
		c.submit(commitID, session)
	}()
}

func (c *Committer) submit(commitID string, session domain.StudySession) {
	attrs := []any{
		slog.String("commit_id", commitID),
		slog.String("reason", string(session.Reason)),
		slog.Int("duration_min", session.DurationMinutes),
		slog.Time("start", session.StartTime),
	}
	if c.gateway == nil {
		c.logger.Warn("no session gateway, dropping session", attrs...)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	record, err := c.gateway.Create(ctx, session)
	if err != nil {
		c.logger.Error("session commit failed, dropping", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	c.logger.Info("session committed", append(attrs, slog.Int64("record_id", record.ID))...)

	c.mu.Lock()
	fns := make([]func(domain.StudySession, domain.SessionRecord), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(session, record)
	}
}

// Pending reports the number of submissions still in flight.
func (c *Committer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Wait blocks until every submission dispatched so far has finished or ctx
// is done.
func (c *Committer) Wait(ctx context.Context) error {
	c.mu.Lock()
	waits := make([]chan struct{}, 0, len(c.inflight))
	for _, done := range c.inflight {
		waits = append(waits, done)
	}
	c.mu.Unlock()
	for _, done := range waits {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
