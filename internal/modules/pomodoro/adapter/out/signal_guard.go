package out

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	pomodoroout "studyo/internal/modules/pomodoro/port/out"
)

const DefaultConfirmWindow = 3 * time.Second

// SignalGuard asks for confirmation before the process leaves while a timer
// runs. Once installed, the first quit request (SIGINT, SIGTERM or a key in
// the TUI) only warns; a second one inside the window goes through.
type SignalGuard struct {
	logger *slog.Logger
	warn   func(string)
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	armed    bool
	warnedAt time.Time
}

var _ pomodoroout.NavigationGuard = (*SignalGuard)(nil)

func NewSignalGuard(logger *slog.Logger, warn func(string), window time.Duration, now func() time.Time) *SignalGuard {
	if logger == nil {
		logger = slog.Default()
	}
	if warn == nil {
		warn = func(string) {}
	}
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	if now == nil {
		now = time.Now
	}
	return &SignalGuard{logger: logger, warn: warn, window: window, now: now}
}

// SetWarn replaces the warning callback, typically once the UI exists.
func (g *SignalGuard) SetWarn(warn func(string)) {
	if warn == nil {
		warn = func(string) {}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.warn = warn
}

func (g *SignalGuard) Install() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.warnedAt = time.Time{}
}

func (g *SignalGuard) Remove() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
	g.warnedAt = time.Time{}
}

func (g *SignalGuard) Installed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.armed
}

// RequestQuit reports whether the caller may leave now.
func (g *SignalGuard) RequestQuit() bool {
	g.mu.Lock()
	if !g.armed {
		g.mu.Unlock()
		return true
	}
	now := g.now()
	if !g.warnedAt.IsZero() && now.Sub(g.warnedAt) <= g.window {
		g.mu.Unlock()
		g.logger.Warn("quit confirmed while timer running")
		return true
	}
	g.warnedAt = now
	warn := g.warn
	g.mu.Unlock()
	warn("Timer is running. Quit again within " + g.window.String() + " to leave; the current session will not be saved.")
	return false
}

// Listen routes SIGINT and SIGTERM through RequestQuit and calls onQuit when
// one is let through. It returns when ctx is done.
func (g *SignalGuard) Listen(ctx context.Context, onQuit func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case sig := <-sigCh:
				g.logger.Info("received signal", slog.String("signal", sig.String()))
				if g.RequestQuit() {
					onQuit()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
