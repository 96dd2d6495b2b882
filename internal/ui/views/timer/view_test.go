package timer

import (
	"bytes"
	"strings"
	"testing"

	pomodorodto "studyo/internal/modules/pomodoro/dto"
)

func TestShouldRingOnlyForNaturalWorkCompletion(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		prev pomodorodto.SnapshotOutput
		next pomodorodto.SnapshotOutput
		want bool
	}{
		{"work ran out", pomodorodto.SnapshotOutput{Completions: 0}, pomodorodto.SnapshotOutput{Completions: 1, LastCompleted: "work"}, true},
		{"break ran out", pomodorodto.SnapshotOutput{Completions: 1, LastCompleted: "work"}, pomodorodto.SnapshotOutput{Completions: 2, LastCompleted: "short_break"}, false},
		{"skip leaves counter alone", pomodorodto.SnapshotOutput{Completions: 1, LastCompleted: "work", Stage: "work"}, pomodorodto.SnapshotOutput{Completions: 1, LastCompleted: "work", Stage: "short_break"}, false},
	}
	for _, tc := range cases {
		if got := ShouldRing(tc.prev, tc.next); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestSnapshotRendersClockAndRings(t *testing.T) {
	t.Parallel()
	var bell bytes.Buffer
	m := New()
	m.bell = &bell
	m.SetSubject("Algebra")

	m, _ = m.Update(SnapshotMsg{Snapshot: pomodorodto.SnapshotOutput{Stage: "work", StageLabel: "Focus", Clock: "00:01", Running: true, CyclesBeforeLongBreak: 4}})
	view := m.View()
	if !strings.Contains(view, "00:01") || !strings.Contains(view, "FOCUS") || !strings.Contains(view, "Algebra") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	m, cmd := m.Update(SnapshotMsg{Snapshot: pomodorodto.SnapshotOutput{Stage: "short_break", StageLabel: "Short break", Clock: "05:00", Completions: 1, LastCompleted: "work", CompletedCycles: 1, CycleInSet: 1, CyclesBeforeLongBreak: 4}})
	if cmd == nil {
		t.Fatalf("expected commands after snapshot")
	}
	m.ringCmd()()
	if bell.String() != "\a" {
		t.Fatalf("expected bell written, got %q", bell.String())
	}
	if !strings.Contains(m.View(), "1 cycles completed") {
		t.Fatalf("expected cycle count in view")
	}
}
