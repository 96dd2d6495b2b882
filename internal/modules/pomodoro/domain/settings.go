package domain

const (
	DefaultWorkMinutes           = 25
	DefaultShortBreakMinutes     = 5
	DefaultLongBreakMinutes      = 15
	DefaultCyclesBeforeLongBreak = 4
)

type Settings struct {
	WorkMinutes           int   `json:"workMinutes" yaml:"work_minutes"`
	ShortBreakMinutes     int   `json:"shortBreakMinutes" yaml:"short_break_minutes"`
	LongBreakMinutes      int   `json:"longBreakMinutes" yaml:"long_break_minutes"`
	CyclesBeforeLongBreak int   `json:"cyclesBeforeLongBreak" yaml:"cycles_before_long_break"`
	DefaultSubjectID      int64 `json:"defaultSubjectId,omitempty" yaml:"default_subject_id,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:           DefaultWorkMinutes,
		ShortBreakMinutes:     DefaultShortBreakMinutes,
		LongBreakMinutes:      DefaultLongBreakMinutes,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
	}
}

// Normalize clamps every duration and the cycle count to at least 1.
// Bad input is corrected, never rejected.
func (s Settings) Normalize() Settings {
	s.WorkMinutes = atLeastOne(s.WorkMinutes)
	s.ShortBreakMinutes = atLeastOne(s.ShortBreakMinutes)
	s.LongBreakMinutes = atLeastOne(s.LongBreakMinutes)
	s.CyclesBeforeLongBreak = atLeastOne(s.CyclesBeforeLongBreak)
	if s.DefaultSubjectID < 0 {
		s.DefaultSubjectID = 0
	}
	return s
}

func (s Settings) StageMinutes(stage Stage) int {
	switch stage {
	case StageShortBreak:
		return s.ShortBreakMinutes
	case StageLongBreak:
		return s.LongBreakMinutes
	default:
		return s.WorkMinutes
	}
}

func (s Settings) StageSeconds(stage Stage) int {
	return s.StageMinutes(stage) * 60
}

func (s Settings) HasDefaultSubject() bool {
	return s.DefaultSubjectID > 0
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
