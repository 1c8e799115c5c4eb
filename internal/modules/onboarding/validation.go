package onboarding

import (
	"strings"
	"unicode/utf8"
)

// PresetBarriers are the selectable barriers offered before custom entry.
var PresetBarriers = []string{
	"Sleep",
	"Focus",
	"Stress",
	"Time Management",
	"Motivation",
	"Energy",
}

const (
	MinGoalLen  = 3
	MaxGoalLen  = 200
	MaxBarriers = 10
)

// ValidateGoal returns a user-facing message, or "" when the goal is acceptable.
func ValidateGoal(goal string) string {
	g := strings.TrimSpace(goal)
	n := utf8.RuneCountInString(g)
	switch {
	case n == 0:
		return "Please share your goal with us"
	case n < MinGoalLen:
		return "Your goal should be at least 3 characters"
	case n > MaxGoalLen:
		return "Your goal is too long. Please keep it under 200 characters"
	}
	return ""
}

// ValidateBarriers checks the combined preset and custom selection.
func ValidateBarriers(barriers, custom []string) string {
	total := len(barriers) + len(custom)
	switch {
	case total == 0:
		return "Please select at least one barrier"
	case total > MaxBarriers:
		return "Please select no more than 10 barriers"
	}
	return ""
}
