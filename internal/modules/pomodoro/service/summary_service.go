package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"studyo/internal/modules/pomodoro/domain"
	pomodoroout "studyo/internal/modules/pomodoro/port/out"
	"studyo/internal/platform/clock"
	apperrors "studyo/internal/platform/errors"
)

// SummaryService derives today's and this week's counters from the backend
// session list. Concurrent refreshes share a single request.
type SummaryService struct {
	gateway pomodoroout.SessionGateway
	resets  pomodoroout.ResetStore
	clock   clock.Clock
	loc     *time.Location
	logger  *slog.Logger

	group singleflight.Group

	mu        sync.Mutex
	latest    domain.Summary
	hasLatest bool
	listeners map[int]func(domain.Summary)
	nextID    int
}

func NewSummaryService(gateway pomodoroout.SessionGateway, resets pomodoroout.ResetStore, clk clock.Clock, loc *time.Location, logger *slog.Logger) *SummaryService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryService{
		gateway:   gateway,
		resets:    resets,
		clock:     clk,
		loc:       loc,
		logger:    logger,
		listeners: map[int]func(domain.Summary){},
	}
}

func (s *SummaryService) Refresh(ctx context.Context) (domain.Summary, error) {
	v, err, shared := s.group.Do("summary", func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return domain.Summary{}, err
	}
	if shared {
		s.logger.Debug("summary refresh coalesced")
	}
	return v.(domain.Summary), nil
}

func (s *SummaryService) refresh(ctx context.Context) (domain.Summary, error) {
	if s.gateway == nil {
		return domain.Summary{}, apperrors.ErrNotConfigured
	}
	records, err := s.gateway.List(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("list sessions: %w", err)
	}
	now := s.clock.Now()
	reset := s.loadReset(ctx, now)
	summary := domain.Summarize(records, now, s.loc, reset)

	s.mu.Lock()
	s.latest = summary
	s.hasLatest = true
	fns := make([]func(domain.Summary), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(summary)
	}
	return summary, nil
}

// ResetToday hides every session already logged today from the daily count.
// The offset expires on its own at the next local midnight.
func (s *SummaryService) ResetToday(ctx context.Context) (domain.Summary, error) {
	if s.gateway == nil || s.resets == nil {
		return domain.Summary{}, apperrors.ErrNotConfigured
	}
	records, err := s.gateway.List(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("list sessions: %w", err)
	}
	now := s.clock.Now()
	reset := domain.ResetOffset{Day: domain.DayKey(now, s.loc), Offset: domain.TodayCount(records, now, s.loc)}
	if err := s.resets.SaveReset(ctx, reset); err != nil {
		return domain.Summary{}, fmt.Errorf("save reset offset: %w", err)
	}
	return s.Refresh(ctx)
}

func (s *SummaryService) Latest() (domain.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

func (s *SummaryService) OnRefresh(fn func(domain.Summary)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.nextID
	s.nextID++
	s.listeners[key] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
	}
}

// loadReset drops an offset recorded on an earlier day.
func (s *SummaryService) loadReset(ctx context.Context, now time.Time) domain.ResetOffset {
	if s.resets == nil {
		return domain.ResetOffset{}
	}
	reset, err := s.resets.LoadReset(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("reset offset unreadable", slog.String("error", err.Error()))
		}
		return domain.ResetOffset{}
	}
	if reset.Day != domain.DayKey(now, s.loc) {
		if err := s.resets.ClearReset(ctx); err != nil {
			s.logger.Warn("clear stale reset offset", slog.String("error", err.Error()))
		}
		return domain.ResetOffset{}
	}
	return reset
}
