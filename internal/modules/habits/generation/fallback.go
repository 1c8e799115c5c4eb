package generation

import (
	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
)

type template struct {
	title       string
	description string
	frequency   string
	duration    float64
	priority    float64
}

// Each list is split at a fixed index: templates before it go to the
// earlier phase, the rest to the next one.
var fallbackSets = []struct {
	category  habits.Category
	split     int
	early     habits.Phase
	templates []template
}{
	{
		category: habits.CategoryFoundational, split: 2, early: 1,
		templates: []template{
			{"Morning Reflection", "Spend 5 minutes reflecting on your goals and intentions for the day", habits.FrequencyDaily, 5, 8},
			{"Evening Review", "Review your day and track progress towards your goal", habits.FrequencyDaily, 5, 7},
			{"Weekly Planning", "Plan out the week ahead with specific actions", habits.FrequencyWeekly, 30, 9},
		},
	},
	{
		category: habits.CategoryGoalSpecific, split: 1, early: 2,
		templates: []template{
			{"Goal-Aligned Action", "Take one meaningful action directly aligned with your goal", habits.FrequencyDaily, 30, 10},
			{"Learning Session", "Learn something new that supports your goal", habits.FrequencyDaily, 20, 8},
		},
	},
	{
		category: habits.CategoryBarrierTargeting, split: 1, early: 3,
		templates: []template{
			{"Obstacle Mitigation", "Actively work on overcoming identified barriers", habits.FrequencyDaily, 15, 9},
		},
	},
}

// Fallback returns the built-in habit set. It covers every category and
// does not depend on the request.
func Fallback() []normalize.RawHabit {
	var out []normalize.RawHabit
	for _, set := range fallbackSets {
		for i, t := range set.templates {
			phase := set.early
			if i >= set.split {
				phase++
			}
			d := t.duration
			out = append(out, normalize.RawHabit{
				Title:       t.title,
				Description: t.description,
				Category:    string(set.category),
				Phase:       float64(phase),
				Frequency:   t.frequency,
				Duration:    &d,
				Priority:    t.priority,
			})
		}
	}
	return out
}
