package domain

import (
	"fmt"
	"time"
)

// Snapshot is everything a renderer needs after a state change.
type Snapshot struct {
	Stage                 Stage
	StageLabel            string
	RemainingSeconds      int
	TotalSeconds          int
	Clock                 string
	Progress              float64
	CompletedCycles       int
	CycleInSet            int
	CyclesBeforeLongBreak int
	Running               bool
	SessionStart          time.Time
	Completions           int
	LastCompleted         Stage
	At                    time.Time
}

func BuildSnapshot(state TimerState, settings Settings, at time.Time) Snapshot {
	total := settings.StageSeconds(state.Stage)
	cycles := settings.CyclesBeforeLongBreak
	if cycles < 1 {
		cycles = 1
	}
	return Snapshot{
		Stage:                 state.Stage,
		StageLabel:            state.Stage.Label(),
		RemainingSeconds:      state.RemainingSeconds,
		TotalSeconds:          total,
		Clock:                 FormatClock(state.RemainingSeconds),
		Progress:              Progress(state.RemainingSeconds, total),
		CompletedCycles:       state.CompletedCycles,
		CycleInSet:            state.CompletedCycles % cycles,
		CyclesBeforeLongBreak: cycles,
		Running:               state.Running,
		SessionStart:          state.SessionStart,
		Completions:           state.Completions,
		LastCompleted:         state.LastCompleted,
		At:                    at,
	}
}

// FormatClock renders seconds as mm:ss; minutes are not capped at 99.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Progress is the ring fraction 1 - remaining/total, clamped to [0, 1].
func Progress(remaining, total int) float64 {
	if total <= 0 {
		return 1
	}
	p := 1 - float64(remaining)/float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
