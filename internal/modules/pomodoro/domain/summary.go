package domain

import (
	"sort"
	"time"
)

const recentLimit = 5

// ResetOffset hides the sessions already logged today after the user zeroed
// the counter. It only applies to the day it was recorded on.
type ResetOffset struct {
	Day    string `json:"day"`
	Offset int    `json:"offset"`
}

type Summary struct {
	Day              string
	SessionsToday    int
	MinutesToday     int
	SessionsThisWeek int
	Recent           []SessionRecord
}

func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// WeekStart returns Monday 00:00 of the week containing now, in loc.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	diff := int(local.Weekday()) - 1
	if local.Weekday() == time.Sunday {
		diff = 6
	}
	y, m, d := local.AddDate(0, 0, -diff).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func Summarize(records []SessionRecord, now time.Time, loc *time.Location, reset ResetOffset) Summary {
	if loc == nil {
		loc = time.Local
	}
	today := DayKey(now, loc)
	weekStart := WeekStart(now, loc)

	out := Summary{Day: today}
	for _, r := range records {
		if DayKey(r.StartTime, loc) == today {
			out.SessionsToday++
			out.MinutesToday += r.DurationMinutes
		}
		if !r.StartTime.Before(weekStart) {
			out.SessionsThisWeek++
		}
	}
	if reset.Day == today {
		out.SessionsToday -= reset.Offset
		if out.SessionsToday < 0 {
			out.SessionsToday = 0
		}
	}

	sorted := append([]SessionRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	out.Recent = sorted
	return out
}

// TodayCount is the raw number of sessions started on now's day.
func TodayCount(records []SessionRecord, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	today := DayKey(now, loc)
	n := 0
	for _, r := range records {
		if DayKey(r.StartTime, loc) == today {
			n++
		}
	}
	return n
}
