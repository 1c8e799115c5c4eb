package onboarding

import (
	"context"

	"github.com/yungbote/northstar-backend/internal/modules/habits/journey"
)

// StorageKey is the single key the onboarding blob is stored under.
const StorageKey = "@onboarding_state"

const (
	StepGoal     = 1
	StepBarriers = 2
	StepPlan     = 3
)

// State is the persisted part of onboarding.
type State struct {
	Step                 int             `json:"step"`
	NorthStarGoal        string          `json:"northStarGoal"`
	Barriers             []string        `json:"barriers"`
	CustomBarriers       []string        `json:"customBarriers"`
	Habits               *journey.Layers `json:"habits"`
	Journey              *journey.Plan   `json:"journey"`
	IsOnboardingComplete bool            `json:"isOnboardingComplete"`
}

func initialState() State {
	return State{
		Step:           StepGoal,
		Barriers:       []string{},
		CustomBarriers: []string{},
	}
}

// AllBarriers returns preset selections followed by custom entries.
func (s State) AllBarriers() []string {
	out := make([]string, 0, len(s.Barriers)+len(s.CustomBarriers))
	out = append(out, s.Barriers...)
	return append(out, s.CustomBarriers...)
}

func (s State) clone() State {
	c := s
	c.Barriers = append([]string{}, s.Barriers...)
	c.CustomBarriers = append([]string{}, s.CustomBarriers...)
	return c
}

// View is State plus the transient fields that are never persisted.
type View struct {
	State
	IsLoading bool    `json:"isLoading"`
	Error     *string `json:"error"`
}

// Store persists the onboarding blob under a key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Generator produces habit layers for a goal and its barriers.
type Generator interface {
	Generate(ctx context.Context, goal string, barriers []string) (journey.Layers, error)
}
