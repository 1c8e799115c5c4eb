package journey

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
)

// Status is the display status of a journey phase. It is unrelated to the
// persisted plan phase status.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
)

// PhaseCount is fixed; a journey always has four phases.
const PhaseCount = 4

const phaseWindow = 7 * 24 * time.Hour

type Habit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Frequency   string `json:"frequency,omitempty"`
}

// Layers holds habits bucketed by category.
type Layers struct {
	Foundational     []Habit `json:"foundational"`
	GoalSpecific     []Habit `json:"goalSpecific"`
	BarrierTargeting []Habit `json:"barrierTargeting"`
}

func (l Layers) Total() int {
	return len(l.Foundational) + len(l.GoalSpecific) + len(l.BarrierTargeting)
}

type Phase struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Summary    string    `json:"summary"`
	Status     Status    `json:"status"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	HabitCount int       `json:"habitCount"`
	Habits     []Habit   `json:"habits"`
}

type Plan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	Phases    []Phase   `json:"phases"`
}

type phaseTemplate struct {
	id      string
	name    string
	summary string
}

var templates = [PhaseCount]phaseTemplate{
	{"reset-rebuild", "Reset & Rebuild", "Foundation building and habit establishment"},
	{"build-momentum", "Build Momentum", "Strengthening routines and overcoming obstacles"},
	{"polish-prepare", "Polish & Prepare", "Refining habits and preparing for next level"},
	{"ready-window", "Ready Window", "Peak performance and goal achievement"},
}

// Build lays the habit layers out over four consecutive seven-day phases
// starting at now. The first phase is current and the rest are locked.
func Build(goalName string, layers Layers, now time.Time) Plan {
	fEarly, fLate := split(layers.Foundational, 6)
	gEarly, gLate := split(layers.GoalSpecific, 7)
	bEarly, bLate := split(layers.BarrierTargeting, 8)

	buckets := [PhaseCount][]Habit{
		concat(fEarly),
		concat(fLate, gEarly),
		concat(gLate, bEarly),
		concat(bLate),
	}

	plan := Plan{
		ID:        uuid.NewString(),
		Name:      goalName,
		StartDate: now,
		Phases:    make([]Phase, 0, PhaseCount),
	}
	for i, t := range templates {
		status := StatusLocked
		if i == 0 {
			status = StatusCurrent
		}
		start := now.Add(time.Duration(i) * phaseWindow)
		plan.Phases = append(plan.Phases, Phase{
			ID:         t.id,
			Name:       t.name,
			Summary:    t.summary,
			Status:     status,
			StartDate:  start,
			EndDate:    start.Add(phaseWindow),
			HabitCount: len(buckets[i]),
			Habits:     buckets[i],
		})
	}
	return plan
}

// split keeps ceil(n*tenths/10) items in the head. Integer math avoids
// float rounding pushing an exact product over the next integer.
func split(hs []Habit, tenths int) ([]Habit, []Habit) {
	head := (len(hs)*tenths + 9) / 10
	return hs[:head], hs[head:]
}

func concat(parts ...[]Habit) []Habit {
	out := []Habit{}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// CategorizedHabit is a habit as returned by the plan API.
type CategorizedHabit struct {
	Habit
	Category habits.Category
}

// LayersFromHabits buckets habits by category, keeping input order.
func LayersFromHabits(hs []CategorizedHabit) Layers {
	l := Layers{
		Foundational:     []Habit{},
		GoalSpecific:     []Habit{},
		BarrierTargeting: []Habit{},
	}
	for _, h := range hs {
		switch h.Category {
		case habits.CategoryGoalSpecific:
			l.GoalSpecific = append(l.GoalSpecific, h.Habit)
		case habits.CategoryBarrierTargeting:
			l.BarrierTargeting = append(l.BarrierTargeting, h.Habit)
		default:
			l.Foundational = append(l.Foundational, h.Habit)
		}
	}
	return l
}
