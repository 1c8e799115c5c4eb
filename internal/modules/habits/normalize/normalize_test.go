package normalize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
)

type gapSpy struct {
	calls   int
	missing []habits.Category
}

func (g *gapSpy) RecordCategoryGap(_ context.Context, missing []habits.Category) {
	g.calls++
	g.missing = missing
}

func f64(v float64) *float64 { return &v }

func TestNormalizeClampsPhaseAndPriority(t *testing.T) {
	n := New(nil, nil)
	out := n.Normalize(context.Background(), []RawHabit{
		{Title: "a", Category: "foundational", Phase: 0, Priority: 0},
		{Title: "b", Category: "goal", Phase: 5, Priority: 11},
		{Title: "c", Category: "barrier", Phase: 2.9, Priority: 7.6},
		{Title: "d", Category: "barrier", Phase: -3, Priority: -100},
	})
	require.Len(t, out, 4)

	assert.Equal(t, habits.Phase(1), out[0].Phase)
	assert.Equal(t, 1, out[0].Priority)
	assert.Equal(t, habits.Phase(4), out[1].Phase)
	assert.Equal(t, 10, out[1].Priority)
	assert.Equal(t, habits.Phase(2), out[2].Phase)
	assert.Equal(t, 7, out[2].Priority)
	assert.Equal(t, habits.Phase(1), out[3].Phase)
	assert.Equal(t, 1, out[3].Priority)
}

func TestNormalizeDurationVariants(t *testing.T) {
	raw := []RawHabit{
		{Title: "unset", Category: "foundational"},
		{Title: "fractional", Category: "goal", Duration: f64(12.7)},
		{Title: "negative", Category: "barrier", Duration: f64(-4)},
		{Title: "zero", Category: "barrier", Duration: f64(0)},
	}

	server := New(nil, nil).Normalize(context.Background(), raw)
	assert.Nil(t, server[0].Duration)
	require.NotNil(t, server[1].Duration)
	assert.Equal(t, 12, *server[1].Duration)
	require.NotNil(t, server[2].Duration)
	assert.Equal(t, 1, *server[2].Duration)
	assert.Nil(t, server[3].Duration)

	gen := NormalizeGenerated(raw)
	require.NotNil(t, gen[0].Duration)
	assert.Equal(t, DefaultDuration, *gen[0].Duration)
	assert.Equal(t, 12, *gen[1].Duration)
	assert.Equal(t, DefaultDuration, *gen[3].Duration)
}

func TestNormalizeTruncatesFields(t *testing.T) {
	long := strings.Repeat("é", 2000)
	out := New(nil, nil).Normalize(context.Background(), []RawHabit{
		{Title: long, Description: long, Frequency: long, Category: "goal"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, habits.MaxTitleLen, len([]rune(out[0].Title)))
	assert.Equal(t, habits.MaxDescriptionLen, len([]rune(out[0].Description)))
	assert.Equal(t, habits.MaxFrequencyLen, len([]rune(out[0].Frequency)))
}

func TestNormalizeGeneratedDefaults(t *testing.T) {
	out := NormalizeGenerated([]RawHabit{{Frequency: "Every day", Category: "Barrier Targeting"}})
	require.Len(t, out, 1)
	assert.Equal(t, UntitledHabit, out[0].Title)
	assert.Equal(t, habits.FrequencyDaily, out[0].Frequency)
	assert.Equal(t, habits.CategoryBarrierTargeting, out[0].Category)
}

func TestNormalizePersistenceVariantKeepsFrequencyText(t *testing.T) {
	out := New(nil, nil).Normalize(context.Background(), []RawHabit{{Frequency: "Every day", Category: "goal"}})
	assert.Equal(t, "Every day", out[0].Frequency)
}

func TestNormalizeReportsCategoryGapWithoutChangingOutput(t *testing.T) {
	spy := &gapSpy{}
	raw := []RawHabit{
		{Title: "only foundational", Category: "foundational", Phase: 1, Priority: 5},
	}
	out := New(nil, spy).Normalize(context.Background(), raw)

	require.Len(t, out, 1)
	assert.Equal(t, habits.CategoryFoundational, out[0].Category)
	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, []habits.Category{habits.CategoryGoalSpecific, habits.CategoryBarrierTargeting}, spy.missing)
}

func TestNormalizeFullCoverageNoGap(t *testing.T) {
	spy := &gapSpy{}
	New(nil, spy).Normalize(context.Background(), []RawHabit{
		{Category: "foundational"}, {Category: "goal"}, {Category: "barrier"},
	})
	assert.Zero(t, spy.calls)
}

func TestHabitRawRoundTripsDuration(t *testing.T) {
	d := 20
	raw := Habit{Title: "x", Category: habits.CategoryGoalSpecific, Phase: 3, Duration: &d, Priority: 4}.Raw()
	require.NotNil(t, raw.Duration)
	assert.Equal(t, 20.0, *raw.Duration)
	assert.Equal(t, "goal-specific", raw.Category)
	assert.Equal(t, 3.0, raw.Phase)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}
