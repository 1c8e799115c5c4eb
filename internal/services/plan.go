package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/data/db"
	"github.com/yungbote/northstar-backend/internal/data/repos"
	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/domain/user"
	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
	"github.com/yungbote/northstar-backend/internal/platform/apierr"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

// Assembly steps, in execution order.
const (
	StepUser       = "user"
	StepGoal       = "goal"
	StepBarriers   = "barriers"
	StepGeneration = "generation"
	StepPlan       = "plan"
	StepPhases     = "phases"
	StepHabits     = "habits"
	StepSummary    = "summary"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanStepError identifies the assembly step that failed.
type PlanStepError struct {
	Step string
	Err  error
}

func (e *PlanStepError) Error() string {
	return fmt.Sprintf("plan assembly failed at %s: %v", e.Step, e.Err)
}

func (e *PlanStepError) Unwrap() error { return e.Err }

// Caller is the authenticated user a plan is assembled for.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

type HabitGenerator interface {
	Generate(ctx context.Context, req generation.Request) generation.Result
}

type ResultValidator interface {
	Validate(res generation.Result) error
}

type PlanRecorder interface {
	IncPlansCreated(ctx context.Context)
}

type HabitView struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    habits.Category `json:"category"`
	Phase       habits.Phase    `json:"phase"`
	Frequency   string          `json:"frequency"`
	Duration    *int            `json:"duration,omitempty"`
	Priority    int             `json:"priority"`
}

type Summary struct {
	FoundationalCount     int `json:"foundationalCount"`
	GoalSpecificCount     int `json:"goalSpecificCount"`
	BarrierTargetingCount int `json:"barrierTargetingCount"`
	TotalCount            int `json:"totalCount"`
}

type GenerateResult struct {
	PlanID uuid.UUID   `json:"planId"`
	GoalID uuid.UUID   `json:"goalId"`
	Habits []HabitView `json:"habits"`
	// Source is the generation source; it is logged, not returned to clients.
	Source  string  `json:"-"`
	Summary Summary `json:"summary"`
}

type PhaseCounts struct {
	Phase1 int `json:"phase1"`
	Phase2 int `json:"phase2"`
	Phase3 int `json:"phase3"`
	Phase4 int `json:"phase4"`
}

type PhaseView struct {
	ID          uuid.UUID          `json:"id"`
	PhaseNumber habits.Phase       `json:"phaseNumber"`
	Status      habits.PhaseStatus `json:"status"`
	StartDate   *time.Time         `json:"startDate"`
	EndDate     *time.Time         `json:"endDate"`
}

type PlanDetails struct {
	PlanID      uuid.UUID   `json:"planId"`
	GoalID      uuid.UUID   `json:"goalId"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	PhaseCounts PhaseCounts `json:"phaseCounts"`
	Phases      []PhaseView `json:"phases"`
	Habits      []HabitView `json:"habits"`
}

type PlanListItem struct {
	PlanID      uuid.UUID   `json:"planId"`
	GoalID      uuid.UUID   `json:"goalId"`
	Title       string      `json:"title"`
	PhaseCounts PhaseCounts `json:"phaseCounts"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type PlanService interface {
	Assemble(ctx context.Context, req generation.Request, caller Caller) (*GenerateResult, error)
	GetPlan(ctx context.Context, planID, userID uuid.UUID) (*PlanDetails, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]PlanListItem, error)
	UpdatePhaseStatus(ctx context.Context, planID, userID uuid.UUID, phase habits.Phase, status habits.PhaseStatus) (*PhaseView, error)
}

type planService struct {
	log         *logger.Logger
	tx          repos.TxRunner
	userRepo    repos.UserRepo
	goalRepo    repos.GoalRepo
	barrierRepo repos.BarrierRepo
	planRepo    repos.PlanRepo
	phaseRepo   repos.PlanPhaseRepo
	habitRepo   repos.HabitRepo
	generator   HabitGenerator
	validator   ResultValidator
	normalizer  *normalize.Normalizer
	recorder    PlanRecorder
	now         func() time.Time
}

type PlanServiceDeps struct {
	DB          *gorm.DB
	UserRepo    repos.UserRepo
	GoalRepo    repos.GoalRepo
	BarrierRepo repos.BarrierRepo
	PlanRepo    repos.PlanRepo
	PhaseRepo   repos.PlanPhaseRepo
	HabitRepo   repos.HabitRepo
	Generator   HabitGenerator
	Validator   ResultValidator
	Normalizer  *normalize.Normalizer
	Recorder    PlanRecorder
}

func NewPlanService(log *logger.Logger, deps PlanServiceDeps) PlanService {
	serviceLog := log.With("service", "PlanService")
	n := deps.Normalizer
	if n == nil {
		n = normalize.New(log, nil)
	}
	return &planService{
		log:         serviceLog,
		tx:          repos.NewGormTxRunner(deps.DB),
		userRepo:    deps.UserRepo,
		goalRepo:    deps.GoalRepo,
		barrierRepo: deps.BarrierRepo,
		planRepo:    deps.PlanRepo,
		phaseRepo:   deps.PhaseRepo,
		habitRepo:   deps.HabitRepo,
		generator:   deps.Generator,
		validator:   deps.Validator,
		normalizer:  n,
		recorder:    deps.Recorder,
		now:         time.Now,
	}
}

// ValidateGenerateRequest checks the request shape before any side effect.
func ValidateGenerateRequest(req generation.Request) map[string]string {
	fields := map[string]string{}
	title := strings.TrimSpace(req.GoalTitle)
	switch {
	case title == "":
		fields["goalTitle"] = "Goal title is required"
	case len([]rune(title)) > habits.MaxGoalTitleLen:
		fields["goalTitle"] = fmt.Sprintf("Goal title must be at most %d characters", habits.MaxGoalTitleLen)
	}
	if tooLong(req.GoalCategory, habits.MaxLabelLen) {
		fields["goalCategory"] = fmt.Sprintf("Goal category must be at most %d characters", habits.MaxLabelLen)
	}
	if len(req.Barriers) == 0 {
		fields["barriers"] = "At least one barrier is required"
	}
	for i, b := range req.Barriers {
		bt := strings.TrimSpace(b.Title)
		switch {
		case bt == "":
			fields[fmt.Sprintf("barriers[%d].title", i)] = "Barrier title is required"
		case utf8.RuneCountInString(bt) > habits.MaxTitleLen:
			fields[fmt.Sprintf("barriers[%d].title", i)] = fmt.Sprintf("Barrier title must be at most %d characters", habits.MaxTitleLen)
		}
		if tooLong(b.Type, habits.MaxLabelLen) {
			fields[fmt.Sprintf("barriers[%d].type", i)] = fmt.Sprintf("Barrier type must be at most %d characters", habits.MaxLabelLen)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Postgres varchar(n) counts characters, so limits are checked in runes.
func tooLong(s *string, n int) bool {
	return s != nil && utf8.RuneCountInString(*s) > n
}

func (s *planService) Assemble(ctx context.Context, req generation.Request, caller Caller) (*GenerateResult, error) {
	if fields := ValidateGenerateRequest(req); fields != nil {
		return nil, apierr.Validation(http.StatusBadRequest, fields)
	}
	if caller.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("missing caller"))
	}
	req.GoalTitle = strings.TrimSpace(req.GoalTitle)

	log := s.log.With("user_id", caller.UserID.String())
	var out *GenerateResult

	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		// 1. user
		email := strings.TrimSpace(caller.Email)
		if email == "" {
			email = user.PlaceholderEmail(caller.UserID)
		}
		if _, err := s.userRepo.Upsert(dbc, &user.User{ID: caller.UserID, Email: email}); err != nil {
			return s.stepFailed(log, StepUser, err)
		}

		// 2. goal
		goal := &habits.Goal{
			ID:          uuid.New(),
			UserID:      caller.UserID,
			Title:       req.GoalTitle,
			Description: req.GoalDescription,
			Category:    req.GoalCategory,
		}
		if _, err := s.goalRepo.Create(dbc, []*habits.Goal{goal}); err != nil {
			return s.stepFailed(log, StepGoal, err)
		}

		// 3. barriers
		barrierRows := make([]*habits.Barrier, 0, len(req.Barriers))
		for _, b := range req.Barriers {
			barrierRows = append(barrierRows, &habits.Barrier{
				ID:          uuid.New(),
				UserID:      caller.UserID,
				GoalID:      goal.ID,
				Title:       strings.TrimSpace(b.Title),
				Description: b.Description,
				Type:        b.Type,
			})
		}
		barriers, err := s.barrierRepo.Create(dbc, barrierRows)
		if err != nil {
			return s.stepFailed(log, StepBarriers, err)
		}

		// 4. generation + strict schema check
		gen := s.generator.Generate(dbc.Ctx, req)
		if s.validator != nil {
			if err := s.validator.Validate(gen); err != nil {
				log.Error("Generated habits failed schema validation", "source", gen.Source, "error", err)
				return apierr.New(http.StatusBadGateway, "generation_schema_invalid", &PlanStepError{Step: StepGeneration, Err: err})
			}
		}

		// 5. normalize
		normalized := s.normalizer.Normalize(dbc.Ctx, gen.Habits)

		// 6. phase counts
		var counts [4]int
		for _, h := range normalized {
			counts[h.Phase-habits.PhaseMin]++
		}

		// 7. plan
		plan := &habits.HabitPlan{
			ID:          uuid.New(),
			UserID:      caller.UserID,
			GoalID:      goal.ID,
			Title:       req.GoalTitle + " - Habit Plan",
			Phase1Count: counts[0],
			Phase2Count: counts[1],
			Phase3Count: counts[2],
			Phase4Count: counts[3],
		}
		if _, err := s.planRepo.Create(dbc, plan); err != nil {
			return s.stepFailed(log, StepPlan, err)
		}

		// 8. phases
		phaseRows := make([]*habits.PlanPhase, 0, len(habits.Phases))
		for _, p := range habits.Phases {
			status := habits.PhaseStatusPending
			if p == habits.PhaseMin {
				status = habits.PhaseStatusActive
			}
			phaseRows = append(phaseRows, &habits.PlanPhase{
				ID:          uuid.New(),
				PlanID:      plan.ID,
				PhaseNumber: p,
				Status:      status,
			})
		}
		if _, err := s.phaseRepo.Create(dbc, phaseRows); err != nil {
			return s.stepFailed(log, StepPhases, err)
		}

		// 9. habits; index is the position in the full list
		habitRows := make([]*habits.Habit, 0, len(normalized))
		for i, h := range normalized {
			row := &habits.Habit{
				ID:          uuid.New(),
				UserID:      caller.UserID,
				GoalID:      goal.ID,
				PlanID:      plan.ID,
				Title:       h.Title,
				Description: h.Description,
				Category:    h.Category,
				Phase:       h.Phase,
				Frequency:   h.Frequency,
				Duration:    h.Duration,
				Priority:    h.Priority,
			}
			if h.Category == habits.CategoryBarrierTargeting && len(barriers) > 0 {
				id := barriers[i%len(barriers)].ID
				row.BarrierID = &id
			}
			habitRows = append(habitRows, row)
		}
		created, err := s.habitRepo.Create(dbc, habitRows)
		if err != nil {
			return s.stepFailed(log, StepHabits, err)
		}

		// 10. summary from persisted rows
		byCategory, err := s.habitRepo.CountByCategory(dbc, plan.ID)
		if err != nil {
			return s.stepFailed(log, StepSummary, err)
		}

		out = &GenerateResult{
			PlanID:  plan.ID,
			GoalID:  goal.ID,
			Habits:  habitViews(created),
			Source:  gen.Source,
			Summary: summaryFrom(byCategory),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.IncPlansCreated(ctx)
	}
	log.Info("Habit plan created",
		"plan_id", out.PlanID.String(),
		"habit_count", out.Summary.TotalCount,
		"source", out.Source,
	)
	return out, nil
}

func (s *planService) stepFailed(log *logger.Logger, step string, err error) error {
	kind, sqlState := db.Classify(err)
	log.Error("Plan assembly step failed",
		"step", step,
		"kind", string(kind),
		"sqlstate", sqlState,
		"error", err,
	)
	return apierr.New(http.StatusInternalServerError, "plan_"+step+"_failed", &PlanStepError{Step: step, Err: err})
}

func (s *planService) GetPlan(ctx context.Context, planID, userID uuid.UUID) (*PlanDetails, error) {
	plan, err := s.planRepo.GetForUser(dbctx.Context{Ctx: ctx}, planID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}

	phases := make([]PhaseView, 0, len(plan.Phases))
	for _, p := range plan.Phases {
		phases = append(phases, phaseView(&p))
	}
	rows := make([]*habits.Habit, 0, len(plan.Habits))
	for i := range plan.Habits {
		rows = append(rows, &plan.Habits[i])
	}

	return &PlanDetails{
		PlanID:      plan.ID,
		GoalID:      plan.GoalID,
		Title:       plan.Title,
		Description: plan.Description,
		PhaseCounts: phaseCounts(plan),
		Phases:      phases,
		Habits:      habitViews(rows),
	}, nil
}

func (s *planService) ListPlans(ctx context.Context, userID uuid.UUID) ([]PlanListItem, error) {
	plans, err := s.planRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	out := make([]PlanListItem, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanListItem{
			PlanID:      p.ID,
			GoalID:      p.GoalID,
			Title:       p.Title,
			PhaseCounts: phaseCounts(p),
			CreatedAt:   p.CreatedAt,
		})
	}
	return out, nil
}

func (s *planService) UpdatePhaseStatus(ctx context.Context, planID, userID uuid.UUID, phase habits.Phase, status habits.PhaseStatus) (*PhaseView, error) {
	if !phase.Valid() {
		return nil, apierr.Validation(http.StatusBadRequest, map[string]string{"phase": "Phase must be between 1 and 4"})
	}
	if !status.Valid() {
		return nil, apierr.Validation(http.StatusBadRequest, map[string]string{"status": "Unknown phase status"})
	}

	var out *PhaseView
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := s.planRepo.GetForUser(dbc, planID, userID); err != nil {
			return err
		}
		updated, err := s.phaseRepo.UpdateStatus(dbc, planID, phase, status, s.now().UTC())
		if err != nil {
			return err
		}
		v := phaseView(updated)
		out = &v
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("update phase status: %w", err)
	}
	return out, nil
}

func habitViews(rows []*habits.Habit) []HabitView {
	out := make([]HabitView, 0, len(rows))
	for _, h := range rows {
		out = append(out, HabitView{
			ID:          h.ID,
			Title:       h.Title,
			Description: h.Description,
			Category:    h.Category,
			Phase:       h.Phase,
			Frequency:   h.Frequency,
			Duration:    h.Duration,
			Priority:    h.Priority,
		})
	}
	return out
}

func phaseView(p *habits.PlanPhase) PhaseView {
	return PhaseView{
		ID:          p.ID,
		PhaseNumber: p.PhaseNumber,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
}

func phaseCounts(p *habits.HabitPlan) PhaseCounts {
	c := p.PhaseCounts()
	return PhaseCounts{Phase1: c[0], Phase2: c[1], Phase3: c[2], Phase4: c[3]}
}

func summaryFrom(byCategory map[habits.Category]int) Summary {
	s := Summary{
		FoundationalCount:     byCategory[habits.CategoryFoundational],
		GoalSpecificCount:     byCategory[habits.CategoryGoalSpecific],
		BarrierTargetingCount: byCategory[habits.CategoryBarrierTargeting],
	}
	s.TotalCount = s.FoundationalCount + s.GoalSpecificCount + s.BarrierTargetingCount
	return s
}
