package domain

import (
	"sort"
	"strings"
)

type Priority int

const (
	PriorityNone   Priority = 0
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "none"
}

type Subject struct {
	ID          int64
	Name        string
	Description string
	Priority    Priority
	Color       string
}

// SortByPriority orders high before low; subjects without a priority go last,
// ties break on name.
func SortByPriority(subjects []Subject) {
	rank := func(p Priority) int {
		if p == PriorityNone {
			return 99
		}
		return int(p)
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		ri, rj := rank(subjects[i].Priority), rank(subjects[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
}
