package service

import (
	"math"
	"time"

	"studyo/internal/modules/pomodoro/domain"
)

// driftAnchor pins a running countdown to the wall clock. Remaining time is
// always derived from it, never decremented, so late or missing ticks cannot
// make the display fall behind.
type driftAnchor struct {
	startedAt      time.Time
	startRemaining int
}

func anchorAt(now time.Time, remaining int) driftAnchor {
	return driftAnchor{startedAt: now, startRemaining: remaining}
}

func (a driftAnchor) set() bool {
	return !a.startedAt.IsZero()
}

// remaining is startRemaining minus whole elapsed seconds, bounded to
// [0, total]. A clock that moved backwards only ever yields more time.
func (a driftAnchor) remaining(now time.Time, total int) int {
	elapsed := int(math.Floor(now.Sub(a.startedAt).Seconds()))
	return domain.ClampRemaining(a.startRemaining-elapsed, total)
}
