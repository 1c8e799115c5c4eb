package normalize

import (
	"strings"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
)

// Categorize maps free-form category text to a closed category.
// Matching is case-insensitive and ordered: "goal"/"specific" wins over
// "barrier"/"target"; anything else is foundational.
func Categorize(text string) habits.Category {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "goal"), strings.Contains(lower, "specific"):
		return habits.CategoryGoalSpecific
	case strings.Contains(lower, "barrier"), strings.Contains(lower, "target"):
		return habits.CategoryBarrierTargeting
	default:
		return habits.CategoryFoundational
	}
}

// Frequency canonicalizes recognizable schedules and truncates the rest.
func Frequency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "daily"), strings.Contains(lower, "every day"):
		return habits.FrequencyDaily
	case strings.Contains(lower, "weekly"), strings.Contains(lower, "once a week"):
		return habits.FrequencyWeekly
	case strings.Contains(lower, "weekend"):
		return habits.FrequencyWeekends
	case strings.Contains(lower, "weekday"):
		return habits.FrequencyWeekdays
	default:
		return Truncate(text, habits.MaxFrequencyLen)
	}
}
