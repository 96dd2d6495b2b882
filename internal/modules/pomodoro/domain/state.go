package domain

import "time"

// TimerState is the mutable core of one engine. SessionStart is non-zero only
// while a Work interval is in progress and not yet committed.
type TimerState struct {
	Stage            Stage
	RemainingSeconds int
	Running          bool
	CompletedCycles  int
	SessionStart     time.Time

	// Completions counts stages that ran out on their own; LastCompleted is
	// the most recent of them. Renderers use the pair to announce completion.
	Completions   int
	LastCompleted Stage
}

func NewTimerState(settings Settings) TimerState {
	return TimerState{
		Stage:            StageWork,
		RemainingSeconds: settings.StageSeconds(StageWork),
	}
}

func (s TimerState) HasSession() bool {
	return !s.SessionStart.IsZero()
}

// ClampRemaining bounds a remaining value to [0, total].
func ClampRemaining(remaining, total int) int {
	if remaining < 0 {
		return 0
	}
	if remaining > total {
		return total
	}
	return remaining
}
