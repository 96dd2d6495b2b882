package out

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"
)

const (
	defaultProbeInterval = 5 * time.Second
	defaultGapSlack      = 5 * time.Second
)

// ResumeWatcher notices the process coming back after being stopped or the
// host after sleeping, and calls notify so the timer can catch up at once.
type ResumeWatcher struct {
	notify   func()
	logger   *slog.Logger
	interval time.Duration
	slack    time.Duration

	last time.Time
}

func NewResumeWatcher(notify func(), logger *slog.Logger) *ResumeWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeWatcher{notify: notify, logger: logger, interval: defaultProbeInterval, slack: defaultGapSlack}
}

// Run blocks until ctx is done.
func (w *ResumeWatcher) Run(ctx context.Context) {
	contCh := make(chan os.Signal, 1)
	if len(resumeSignals) > 0 {
		signal.Notify(contCh, resumeSignals...)
		defer signal.Stop(contCh)
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.observe(wallNow())
	for {
		select {
		case <-ctx.Done():
			return
		case <-contCh:
			w.logger.Debug("process continued")
			w.observe(wallNow())
			w.notify()
		case <-ticker.C:
			if w.observe(wallNow()) {
				w.notify()
			}
		}
	}
}

// observe records a probe and reports whether the wall clock moved much
// further than one probe interval since the previous one.
func (w *ResumeWatcher) observe(now time.Time) bool {
	prev := w.last
	w.last = now
	if prev.IsZero() {
		return false
	}
	gap := now.Sub(prev)
	if gap <= w.interval+w.slack {
		return false
	}
	w.logger.Info("wall clock gap detected", slog.Duration("gap", gap))
	return true
}

// wallNow drops the monotonic reading, which does not advance while the host
// sleeps on every platform.
func wallNow() time.Time {
	return time.Now().Round(0)
}
