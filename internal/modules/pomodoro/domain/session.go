package domain

import (
	"math"
	"time"
)

type CommitReason string

const (
	CommitCompleted CommitReason = "completed"
	CommitSkipped   CommitReason = "skipped"
)

// StudySession is the record handed to the backend for one Work interval.
type StudySession struct {
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	SubjectID       int64
	Reason          CommitReason
}

// SessionRecord is a session as the backend returns it.
type SessionRecord struct {
	ID              int64
	SubjectID       int64
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	Notes           string
}

// DurationMinutes rounds the interval to whole minutes with a floor of one,
// so a session is never reported as zero-length.
func DurationMinutes(start, end time.Time) int {
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func NewStudySession(start, end time.Time, subjectID int64, reason CommitReason) StudySession {
	return StudySession{
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: DurationMinutes(start, end),
		SubjectID:       subjectID,
		Reason:          reason,
	}
}
