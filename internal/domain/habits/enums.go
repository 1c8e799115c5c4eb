package habits

import (
	"fmt"
	"strings"
)

// Category is the closed set of habit categories.
type Category string

const (
	CategoryFoundational     Category = "foundational"
	CategoryGoalSpecific     Category = "goal-specific"
	CategoryBarrierTargeting Category = "barrier-targeting"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFoundational, CategoryGoalSpecific, CategoryBarrierTargeting}

func (c Category) Valid() bool {
	switch c {
	case CategoryFoundational, CategoryGoalSpecific, CategoryBarrierTargeting:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(strings.ToLower(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown habit category %q", s)
	}
	return c, nil
}

// Phase is a persisted plan phase number, 1 through 4.
type Phase int

const (
	PhaseMin Phase = 1
	PhaseMax Phase = 4
)

// Phases lists every phase in order.
var Phases = []Phase{1, 2, 3, 4}

func (p Phase) Valid() bool { return p >= PhaseMin && p <= PhaseMax }

// PhaseStatus tracks a persisted plan phase.
type PhaseStatus string

const (
	PhaseStatusPending   PhaseStatus = "pending"
	PhaseStatusActive    PhaseStatus = "active"
	PhaseStatusCompleted PhaseStatus = "completed"
	PhaseStatusSkipped   PhaseStatus = "skipped"
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhaseStatusPending, PhaseStatusActive, PhaseStatusCompleted, PhaseStatusSkipped:
		return true
	}
	return false
}

func ParsePhaseStatus(s string) (PhaseStatus, error) {
	st := PhaseStatus(strings.TrimSpace(strings.ToLower(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown phase status %q", s)
	}
	return st, nil
}

// Canonical frequencies. Unrecognized frequency text is stored as-is (truncated).
const (
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyWeekends = "weekends"
	FrequencyWeekdays = "weekdays"
)

const (
	MaxGoalTitleLen   = 200
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
	MaxFrequencyLen   = 100
	MaxLabelLen       = 100 // goals.category, barriers.type
	MinPriority       = 1
	MaxPriority       = 10
)
