package dto

import "time"

type SnapshotOutput struct {
	Stage                 string
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
	LastCompleted         string
	At                    time.Time
}

type ResetInput struct {
	// Stage is optional; empty keeps the current stage.
	Stage string
}

type SettingsInput struct {
	WorkMinutes           *int
	ShortBreakMinutes     *int
	LongBreakMinutes      *int
	CyclesBeforeLongBreak *int
	DefaultSubjectID      *int64
}

type SettingsOutput struct {
	WorkMinutes           int   `json:"workMinutes" yaml:"work_minutes"`
	ShortBreakMinutes     int   `json:"shortBreakMinutes" yaml:"short_break_minutes"`
	LongBreakMinutes      int   `json:"longBreakMinutes" yaml:"long_break_minutes"`
	CyclesBeforeLongBreak int   `json:"cyclesBeforeLongBreak" yaml:"cycles_before_long_break"`
	DefaultSubjectID      int64 `json:"defaultSubjectId,omitempty" yaml:"default_subject_id,omitempty"`
}

type SessionOutput struct {
	ID              int64
	SubjectID       int64
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	Notes           string
}

type SummaryOutput struct {
	Day              string
	SessionsToday    int
	MinutesToday     int
	SessionsThisWeek int
	Recent           []SessionOutput
}

type SubjectOption struct {
	ID    int64
	Name  string
	Color string
}

// DashboardOutput bundles the summary with the subjects offered for the
// default-subject selector. Either half may be empty when its fetch failed.
type DashboardOutput struct {
	Summary     SummaryOutput
	Subjects    []SubjectOption
	SummaryErr  error
	SubjectsErr error
}
