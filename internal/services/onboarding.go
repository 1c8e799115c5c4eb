package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/modules/habits/journey"
	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
	"github.com/yungbote/northstar-backend/internal/platform/apierr"
	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

// OnboardingService hosts one onboarding machine per user. The store is the
// source of truth: each call loads the user's blob, applies one transition and
// returns the resulting view, so transient fields (loading, error) describe
// that call only.
type OnboardingService interface {
	Get(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
	SetGoal(ctx context.Context, userID uuid.UUID, goal string) (onboarding.View, error)
	ToggleBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error)
	AddCustomBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error)
	RemoveCustomBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error)
	Next(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
	Prev(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
	Retry(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
	Complete(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
	Reset(ctx context.Context, userID uuid.UUID) (onboarding.View, error)
}

type onboardingService struct {
	log   *logger.Logger
	store onboarding.Store
	plans PlanService
	group singleflight.Group
}

func NewOnboardingService(log *logger.Logger, store onboarding.Store, plans PlanService) OnboardingService {
	serviceLog := log.With("service", "OnboardingService")
	return &onboardingService{log: serviceLog, store: store, plans: plans}
}

func onboardingKey(userID uuid.UUID) string {
	return "user:" + userID.String() + ":" + onboarding.StorageKey
}

func (s *onboardingService) machine(ctx context.Context, userID uuid.UUID) (*onboarding.Machine, error) {
	gen := &planGenerator{svc: s, userID: userID}
	m := onboarding.NewMachine(s.log.With("user_id", userID.String()), s.store, gen, onboardingKey(userID))
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *onboardingService) apply(ctx context.Context, userID uuid.UUID, fn func(m *onboarding.Machine) error) (onboarding.View, error) {
	m, err := s.machine(ctx, userID)
	if err != nil {
		return onboarding.View{}, err
	}
	if fn != nil {
		if err := fn(m); err != nil {
			return onboarding.View{}, err
		}
	}
	return m.Snapshot(), nil
}

// Get resumes a user parked on the plan step without a plan by generating it.
func (s *onboardingService) Get(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.EnsurePlan(ctx) })
}

func (s *onboardingService) SetGoal(ctx context.Context, userID uuid.UUID, goal string) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.SetGoal(ctx, goal) })
}

func (s *onboardingService) ToggleBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.ToggleBarrier(ctx, barrier) })
}

func (s *onboardingService) AddCustomBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.AddCustomBarrier(ctx, barrier) })
}

func (s *onboardingService) RemoveCustomBarrier(ctx context.Context, userID uuid.UUID, barrier string) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.RemoveCustomBarrier(ctx, barrier) })
}

func (s *onboardingService) Next(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.NextStep(ctx) })
}

func (s *onboardingService) Prev(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.PrevStep(ctx) })
}

func (s *onboardingService) Retry(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.Retry(ctx) })
}

func (s *onboardingService) Complete(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.Complete(ctx) })
}

func (s *onboardingService) Reset(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
	return s.apply(ctx, userID, func(m *onboarding.Machine) error { return m.Reset(ctx) })
}

// planGenerator assembles a persisted plan and buckets its habits for the
// journey. Concurrent generations for the same user share one assembly.
type planGenerator struct {
	svc    *onboardingService
	userID uuid.UUID
}

func (g *planGenerator) Generate(ctx context.Context, goal string, barriers []string) (journey.Layers, error) {
	v, err, shared := g.svc.group.Do(g.userID.String(), func() (interface{}, error) {
		return g.assemble(ctx, goal, barriers)
	})
	if shared {
		g.svc.log.Debug("Joined in-flight onboarding generation", "user_id", g.userID.String())
	}
	if err != nil {
		return journey.Layers{}, err
	}
	return v.(journey.Layers), nil
}

func (g *planGenerator) assemble(ctx context.Context, goal string, barriers []string) (journey.Layers, error) {
	req := generation.Request{GoalTitle: strings.TrimSpace(goal)}
	for _, b := range barriers {
		req.Barriers = append(req.Barriers, generation.BarrierInput{Title: b})
	}
	caller := Caller{UserID: g.userID}
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.UserID == g.userID {
		caller.Email = rd.Email
	}

	res, err := g.svc.plans.Assemble(ctx, req, caller)
	if err != nil {
		if ae, ok := apierr.As(err); ok && ae.Status < http.StatusInternalServerError {
			return journey.Layers{}, errors.New(userMessage(ae))
		}
		return journey.Layers{}, errors.New("Failed to generate habits")
	}

	return LayersFromViews(res.Habits), nil
}

// LayersFromViews buckets assembled habits into journey layers.
func LayersFromViews(hs []HabitView) journey.Layers {
	items := make([]journey.CategorizedHabit, 0, len(hs))
	for _, h := range hs {
		items = append(items, journey.CategorizedHabit{
			Habit: journey.Habit{
				ID:          h.ID.String(),
				Title:       h.Title,
				Description: h.Description,
				Frequency:   h.Frequency,
			},
			Category: h.Category,
		})
	}
	return journey.LayersFromHabits(items)
}

func userMessage(ae *apierr.Error) string {
	if len(ae.Fields) == 0 {
		return ae.Error()
	}
	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ae.Fields[keys[0]]
}
