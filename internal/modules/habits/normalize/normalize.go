package normalize

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

const (
	DefaultDuration = 15
	UntitledHabit   = "Untitled Habit"

	maxDuration = math.MaxInt32
)

// RawHabit is the ungoverned habit shape produced by a text generator.
type RawHabit struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Phase       float64  `json:"phase"`
	Frequency   string   `json:"frequency"`
	Duration    *float64 `json:"duration,omitempty"`
	Priority    float64  `json:"priority"`
}

// Habit is a habit whose fields satisfy every range and length constraint.
type Habit struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    habits.Category `json:"category"`
	Phase       habits.Phase    `json:"phase"`
	Frequency   string          `json:"frequency"`
	Duration    *int            `json:"duration,omitempty"`
	Priority    int             `json:"priority"`
}

// Raw converts back to the generator shape.
func (h Habit) Raw() RawHabit {
	out := RawHabit{
		Title:       h.Title,
		Description: h.Description,
		Category:    string(h.Category),
		Phase:       float64(h.Phase),
		Frequency:   h.Frequency,
		Priority:    float64(h.Priority),
	}
	if h.Duration != nil {
		d := float64(*h.Duration)
		out.Duration = &d
	}
	return out
}

// GapRecorder receives category coverage gaps.
type GapRecorder interface {
	RecordCategoryGap(ctx context.Context, missing []habits.Category)
}

type Normalizer struct {
	log  *logger.Logger
	gaps GapRecorder
}

func New(log *logger.Logger, gaps GapRecorder) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{log: log.With("component", "HabitNormalizer"), gaps: gaps}
}

// Normalize is the persistence variant: unset duration stays unset and
// frequency is only truncated. Missing categories are reported, never filled.
func (n *Normalizer) Normalize(ctx context.Context, raw []RawHabit) []Habit {
	out := make([]Habit, 0, len(raw))
	for _, r := range raw {
		out = append(out, Habit{
			Title:       Truncate(r.Title, habits.MaxTitleLen),
			Description: Truncate(r.Description, habits.MaxDescriptionLen),
			Category:    Categorize(r.Category),
			Phase:       habits.Phase(ClampFloor(r.Phase, int(habits.PhaseMin), int(habits.PhaseMax))),
			Frequency:   Truncate(r.Frequency, habits.MaxFrequencyLen),
			Duration:    duration(r.Duration, nil),
			Priority:    ClampFloor(r.Priority, habits.MinPriority, habits.MaxPriority),
		})
	}
	if missing := MissingCategories(out); len(missing) > 0 {
		n.log.Warn("Incomplete habit categorization, keeping generated distribution",
			"missing", missing,
			"habit_count", len(out),
		)
		if n.gaps != nil {
			n.gaps.RecordCategoryGap(ctx, missing)
		}
	}
	return out
}

// NormalizeGenerated is the generator-output variant: empty titles get a
// placeholder, unset duration defaults to 15 minutes and frequency is
// canonicalized.
func NormalizeGenerated(raw []RawHabit) []Habit {
	def := DefaultDuration
	out := make([]Habit, 0, len(raw))
	for _, r := range raw {
		title := r.Title
		if title == "" {
			title = UntitledHabit
		}
		out = append(out, Habit{
			Title:       Truncate(title, habits.MaxTitleLen),
			Description: Truncate(r.Description, habits.MaxDescriptionLen),
			Category:    Categorize(r.Category),
			Phase:       habits.Phase(ClampFloor(r.Phase, int(habits.PhaseMin), int(habits.PhaseMax))),
			Frequency:   Frequency(r.Frequency),
			Duration:    duration(r.Duration, &def),
			Priority:    ClampFloor(r.Priority, habits.MinPriority, habits.MaxPriority),
		})
	}
	return out
}

// MissingCategories returns the categories with no members, in display order.
func MissingCategories(hs []Habit) []habits.Category {
	seen := make(map[habits.Category]bool, len(habits.Categories))
	for _, h := range hs {
		seen[h.Category] = true
	}
	var missing []habits.Category
	for _, c := range habits.Categories {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// ClampFloor floors v and clamps it into [lo, hi]. NaN maps to lo.
func ClampFloor(v float64, lo, hi int) int {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f), f < float64(lo):
		return lo
	case f > float64(hi):
		return hi
	default:
		return int(f)
	}
}

// Truncate keeps at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// A zero duration counts as unset, matching falsy handling upstream.
func duration(d *float64, def *int) *int {
	if d == nil || *d == 0 || math.IsNaN(*d) {
		if def == nil {
			return nil
		}
		v := *def
		return &v
	}
	v := ClampFloor(*d, 1, maxDuration)
	return &v
}
