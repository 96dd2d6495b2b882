package out

import (
	"testing"
	"time"

	"studyo/internal/platform/logging"
)

func TestRequestQuitNeedsConfirmationWhileInstalled(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var warnings []string
	guard := NewSignalGuard(logging.Discard(), func(msg string) { warnings = append(warnings, msg) }, 3*time.Second, func() time.Time { return now })

	if !guard.RequestQuit() {
		t.Fatalf("expected quit allowed when guard is not installed")
	}

	guard.Install()
	if guard.RequestQuit() {
		t.Fatalf("first request must only warn")
	}
	now = now.Add(2 * time.Second)
	if !guard.RequestQuit() {
		t.Fatalf("second request inside the window must pass")
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}

	now = now.Add(10 * time.Second)
	if guard.RequestQuit() {
		t.Fatalf("request after the window must warn again")
	}
	now = now.Add(4 * time.Second)
	if guard.RequestQuit() {
		t.Fatalf("window is measured from the last warning")
	}

	guard.Remove()
	if guard.Installed() || !guard.RequestQuit() {
		t.Fatalf("expected quit allowed after remove")
	}
}

func TestReinstallForgetsEarlierWarning(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	guard := NewSignalGuard(logging.Discard(), nil, time.Minute, func() time.Time { return now })
	guard.Install()
	_ = guard.RequestQuit()
	guard.Remove()
	guard.Install()
	if guard.RequestQuit() {
		t.Fatalf("a fresh install must warn first")
	}
}
