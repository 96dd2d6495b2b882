package domain

import "fmt"

type Stage string

const (
	StageWork       Stage = "work"
	StageShortBreak Stage = "short_break"
	StageLongBreak  Stage = "long_break"
)

func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StageWork, StageShortBreak, StageLongBreak:
		return Stage(raw), nil
	case "short", "short-break":
		return StageShortBreak, nil
	case "long", "long-break":
		return StageLongBreak, nil
	}
	return "", fmt.Errorf("unknown stage %q (want work|short_break|long_break)", raw)
}

func (s Stage) Label() string {
	switch s {
	case StageWork:
		return "Focus"
	case StageShortBreak:
		return "Short break"
	case StageLongBreak:
		return "Long break"
	}
	return string(s)
}

// NextStage applies the cycle rule. completedCycles must already include the
// Work interval that just ended: the long-break decision reads the updated count.
func NextStage(current Stage, completedCycles, cyclesBeforeLongBreak int) Stage {
	if current != StageWork {
		return StageWork
	}
	if cyclesBeforeLongBreak < 1 {
		cyclesBeforeLongBreak = 1
	}
	if completedCycles > 0 && completedCycles%cyclesBeforeLongBreak == 0 {
		return StageLongBreak
	}
	return StageShortBreak
}
