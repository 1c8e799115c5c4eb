package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/northstar-backend/internal/modules/habits/journey"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

var ErrInvalidStep = errors.New("step must be between 1 and 3")

const generateFailedMessage = "Failed to generate habits"

// Machine drives goal entry, barrier selection and plan generation. Every
// mutation is written through to the Store. Methods are safe for concurrent
// use; generation runs without holding the lock.
type Machine struct {
	mu      sync.Mutex
	log     *logger.Logger
	key     string
	store   Store
	gen     Generator
	now     func() time.Time
	state   State
	loading bool
	err     string
}

func NewMachine(log *logger.Logger, store Store, gen Generator, key string) *Machine {
	if log == nil {
		log = logger.Nop()
	}
	if key == "" {
		key = StorageKey
	}
	return &Machine{
		log:   log.With("component", "OnboardingMachine"),
		key:   key,
		store: store,
		gen:   gen,
		now:   time.Now,
		state: initialState(),
	}
}

func (m *Machine) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	v := View{State: m.state.clone(), IsLoading: m.loading}
	if m.err != "" {
		msg := m.err
		v.Error = &msg
	}
	return v
}

// Load replaces the in-memory state with the stored blob, if any. A blob that
// cannot be decoded is logged and ignored.
func (m *Machine) Load(ctx context.Context) error {
	raw, ok, err := m.store.Load(ctx, m.key)
	if err != nil {
		return fmt.Errorf("load onboarding state: %w", err)
	}
	if !ok {
		return nil
	}
	st := initialState()
	if err := json.Unmarshal(raw, &st); err != nil {
		m.log.Warn("Failed to decode stored onboarding state", "error", err)
		return nil
	}
	if st.Barriers == nil {
		st.Barriers = []string{}
	}
	if st.CustomBarriers == nil {
		st.CustomBarriers = []string{}
	}
	if st.Step < StepGoal || st.Step > StepPlan {
		st.Step = StepGoal
	}

	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
	return nil
}

func (m *Machine) saveLocked(ctx context.Context) error {
	raw, err := json.Marshal(m.state)
	if err != nil {
		return fmt.Errorf("encode onboarding state: %w", err)
	}
	if err := m.store.Save(ctx, m.key, raw); err != nil {
		m.log.Error("Failed to save onboarding state", "error", err)
		return fmt.Errorf("save onboarding state: %w", err)
	}
	return nil
}

func (m *Machine) mutate(ctx context.Context, fn func(s *State) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !fn(&m.state) {
		return nil
	}
	return m.saveLocked(ctx)
}

// SetStep jumps to step. Landing on the plan step generates as NextStep does.
func (m *Machine) SetStep(ctx context.Context, step int) error {
	if step < StepGoal || step > StepPlan {
		return ErrInvalidStep
	}
	if err := m.mutate(ctx, func(s *State) bool {
		s.Step = step
		return true
	}); err != nil {
		return err
	}
	return m.EnsurePlan(ctx)
}

// EnsurePlan starts generation when the machine sits on the plan step with
// no plan, no generation in flight and no error. Otherwise it does nothing.
func (m *Machine) EnsurePlan(ctx context.Context) error {
	m.mu.Lock()
	trigger := m.state.Step == StepPlan && m.state.Habits == nil && !m.loading && m.err == ""
	m.mu.Unlock()
	if !trigger {
		return nil
	}
	return m.Submit(ctx)
}

// SetGoal stores the goal text and clears any error.
func (m *Machine) SetGoal(ctx context.Context, goal string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.NorthStarGoal = goal
	m.err = ""
	return m.saveLocked(ctx)
}

func (m *Machine) ToggleBarrier(ctx context.Context, barrier string) error {
	return m.mutate(ctx, func(s *State) bool {
		for i, b := range s.Barriers {
			if b == barrier {
				s.Barriers = append(s.Barriers[:i:i], s.Barriers[i+1:]...)
				return true
			}
		}
		s.Barriers = append(s.Barriers, barrier)
		return true
	})
}

// AddCustomBarrier adds a trimmed entry. Blank or duplicate entries are ignored.
func (m *Machine) AddCustomBarrier(ctx context.Context, barrier string) error {
	trimmed := strings.TrimSpace(barrier)
	return m.mutate(ctx, func(s *State) bool {
		if trimmed == "" {
			return false
		}
		for _, b := range s.CustomBarriers {
			if b == barrier || b == trimmed {
				return false
			}
		}
		s.CustomBarriers = append(s.CustomBarriers, trimmed)
		return true
	})
}

func (m *Machine) RemoveCustomBarrier(ctx context.Context, barrier string) error {
	return m.mutate(ctx, func(s *State) bool {
		kept := s.CustomBarriers[:0:0]
		for _, b := range s.CustomBarriers {
			if b != barrier {
				kept = append(kept, b)
			}
		}
		s.CustomBarriers = kept
		return true
	})
}

// NextStep advances one step, saturating at the plan step. Leaving the goal
// or barrier step requires valid input; otherwise Error is set and the step
// is kept. Entering the plan step calls EnsurePlan.
func (m *Machine) NextStep(ctx context.Context) error {
	m.mu.Lock()
	switch m.state.Step {
	case StepGoal:
		if msg := ValidateGoal(m.state.NorthStarGoal); msg != "" {
			m.err = msg
			m.mu.Unlock()
			return nil
		}
	case StepBarriers:
		if msg := ValidateBarriers(m.state.Barriers, m.state.CustomBarriers); msg != "" {
			m.err = msg
			m.mu.Unlock()
			return nil
		}
	}
	if m.state.Step >= StepPlan {
		m.mu.Unlock()
		return nil
	}
	m.state.Step++
	m.err = ""
	err := m.saveLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.EnsurePlan(ctx)
}

// PrevStep moves back one step, saturating at the goal step, and clears any error.
func (m *Machine) PrevStep(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = ""
	if m.state.Step <= StepGoal {
		return nil
	}
	m.state.Step--
	return m.saveLocked(ctx)
}

// Submit generates habits for the current goal and barriers. A generation
// failure is reported through Error, not as a returned error.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	goal := m.state.NorthStarGoal
	barriers := m.state.AllBarriers()
	m.mu.Unlock()

	layers, genErr := m.gen.Generate(ctx, goal, barriers)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if genErr != nil {
		m.log.Warn("Habit generation failed", "error", genErr)
		m.err = genErr.Error()
		if m.err == "" {
			m.err = generateFailedMessage
		}
		return nil
	}
	plan := journey.Build(goal, layers, m.now())
	m.state.Habits = &layers
	m.state.Journey = &plan
	return m.saveLocked(ctx)
}

// Retry regenerates unconditionally.
func (m *Machine) Retry(ctx context.Context) error {
	return m.Submit(ctx)
}

func (m *Machine) Complete(ctx context.Context) error {
	return m.mutate(ctx, func(s *State) bool {
		s.IsOnboardingComplete = true
		return true
	})
}

// Reset clears memory and the stored blob.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = initialState()
	m.loading = false
	m.err = ""
	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("delete onboarding state: %w", err)
	}
	return nil
}
