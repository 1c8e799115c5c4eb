package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/data/repos"
	"github.com/yungbote/northstar-backend/internal/data/repos/testutil"
	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
	"github.com/yungbote/northstar-backend/internal/platform/apierr"
)

type fixedGenerator struct {
	habits []normalize.RawHabit
	calls  int
}

func (g *fixedGenerator) Generate(_ context.Context, _ generation.Request) generation.Result {
	g.calls++
	return generation.Result{Habits: g.habits, Source: generation.SourceModel}
}

type gapSpy struct{ missing []habits.Category }

func (s *gapSpy) RecordCategoryGap(_ context.Context, missing []habits.Category) {
	s.missing = append(s.missing, missing...)
}

type plansCreatedSpy struct{ n int }

func (s *plansCreatedSpy) IncPlansCreated(context.Context) { s.n++ }

func newTestPlanService(t *testing.T, tx *gorm.DB, gen HabitGenerator, gaps normalize.GapRecorder, rec PlanRecorder) PlanService {
	t.Helper()
	logg := testutil.Logger(t)
	validator, err := generation.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return NewPlanService(logg, PlanServiceDeps{
		DB:          tx,
		UserRepo:    repos.NewUserRepo(tx, logg),
		GoalRepo:    repos.NewGoalRepo(tx, logg),
		BarrierRepo: repos.NewBarrierRepo(tx, logg),
		PlanRepo:    repos.NewPlanRepo(tx, logg),
		PhaseRepo:   repos.NewPlanPhaseRepo(tx, logg),
		HabitRepo:   repos.NewHabitRepo(tx, logg),
		Generator:   gen,
		Validator:   validator,
		Normalizer:  normalize.New(logg, gaps),
		Recorder:    rec,
	})
}

func getFitRequest() generation.Request {
	return generation.Request{
		GoalTitle: "Get Fit",
		Barriers:  []generation.BarrierInput{{Title: "Lack of time"}},
	}
}

func countRows(t *testing.T, tx *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAssembleWithFallbackGateway(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	ctx := context.Background()
	rec := &plansCreatedSpy{}
	svc := newTestPlanService(t, tx, generation.NewGateway(nil, nil, nil, generation.Config{}), nil, rec)

	caller := Caller{UserID: uuid.New()}
	res, err := svc.Assemble(ctx, getFitRequest(), caller)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Summary.TotalCount != len(res.Habits) {
		t.Fatalf("summary total %d != habits %d", res.Summary.TotalCount, len(res.Habits))
	}
	if res.Summary.FoundationalCount == 0 || res.Summary.GoalSpecificCount == 0 || res.Summary.BarrierTargetingCount == 0 {
		t.Fatalf("fallback should cover every category: %+v", res.Summary)
	}
	if rec.n != 1 {
		t.Fatalf("plans created counter: want 1 got %d", rec.n)
	}

	details, err := svc.GetPlan(ctx, res.PlanID, caller.UserID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if details.Title != "Get Fit - Habit Plan" {
		t.Fatalf("unexpected plan title %q", details.Title)
	}
	pc := details.PhaseCounts
	if pc.Phase1+pc.Phase2+pc.Phase3+pc.Phase4 != res.Summary.TotalCount {
		t.Fatalf("phase counts %+v do not sum to %d", pc, res.Summary.TotalCount)
	}
	want := []habits.PhaseStatus{habits.PhaseStatusActive, habits.PhaseStatusPending, habits.PhaseStatusPending, habits.PhaseStatusPending}
	if len(details.Phases) != len(want) {
		t.Fatalf("expected 4 phases, got %d", len(details.Phases))
	}
	for i, ph := range details.Phases {
		if ph.Status != want[i] || int(ph.PhaseNumber) != i+1 {
			t.Fatalf("phase %d: got number=%d status=%s", i, ph.PhaseNumber, ph.Status)
		}
	}
	if len(details.Habits) != res.Summary.TotalCount {
		t.Fatalf("GetPlan habits: want %d got %d", res.Summary.TotalCount, len(details.Habits))
	}

	var u struct{ Email string }
	if err := tx.Table("users").Select("email").Where("id = ?", caller.UserID).Scan(&u).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if u.Email != caller.UserID.String()+"@habit-ai.local" {
		t.Fatalf("expected placeholder email, got %q", u.Email)
	}
}

func TestAssembleAssignsBarriersByFullListIndex(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	ctx := context.Background()
	gen := &fixedGenerator{habits: []normalize.RawHabit{
		{Title: "a", Category: "foundational", Phase: 1, Priority: 5},
		{Title: "b", Category: "barrier-targeting", Phase: 1, Priority: 5},
		{Title: "c", Category: "barrier-targeting", Phase: 2, Priority: 5},
		{Title: "d", Category: "goal-specific", Phase: 2, Priority: 5},
		{Title: "e", Category: "barrier-targeting", Phase: 3, Priority: 5},
	}}
	svc := newTestPlanService(t, tx, gen, nil, nil)

	req := generation.Request{
		GoalTitle: "Write a book",
		Barriers:  []generation.BarrierInput{{Title: "Time"}, {Title: "Focus"}},
	}
	res, err := svc.Assemble(ctx, req, Caller{UserID: uuid.New(), Email: "writer@example.com"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var barriers []habits.Barrier
	if err := tx.Where("goal_id = ?", res.GoalID).Find(&barriers).Error; err != nil {
		t.Fatalf("load barriers: %v", err)
	}
	byTitle := map[string]uuid.UUID{}
	for _, b := range barriers {
		byTitle[b.Title] = b.ID
	}

	var rows []habits.Habit
	if err := tx.Where("plan_id = ?", res.PlanID).Find(&rows).Error; err != nil {
		t.Fatalf("load habits: %v", err)
	}
	want := map[string]*uuid.UUID{}
	time0, focus := byTitle["Time"], byTitle["Focus"]
	want["a"] = nil
	want["b"] = &focus // index 1
	want["c"] = &time0 // index 2
	want["d"] = nil
	want["e"] = &time0 // index 4
	for _, h := range rows {
		w := want[h.Title]
		switch {
		case w == nil && h.BarrierID != nil:
			t.Fatalf("habit %s should have no barrier", h.Title)
		case w != nil && (h.BarrierID == nil || *h.BarrierID != *w):
			t.Fatalf("habit %s: barrier mismatch", h.Title)
		}
	}
}

func TestAssembleReportsCategoryGapWithoutChangingOutput(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	spy := &gapSpy{}
	gen := &fixedGenerator{habits: []normalize.RawHabit{
		{Title: "Walk", Category: "foundational", Phase: 1, Priority: 4},
		{Title: "Stretch", Category: "foundational", Phase: 2, Priority: 4},
	}}
	svc := newTestPlanService(t, tx, gen, spy, nil)

	res, err := svc.Assemble(context.Background(), getFitRequest(), Caller{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Summary.TotalCount != 2 || res.Summary.FoundationalCount != 2 {
		t.Fatalf("output should be kept as generated: %+v", res.Summary)
	}
	if len(spy.missing) != 2 {
		t.Fatalf("expected two missing categories, got %v", spy.missing)
	}
}

func TestAssembleSchemaViolationIsHardFailure(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gen := &fixedGenerator{habits: []normalize.RawHabit{
		{Title: "x", Category: "misc", Phase: 7, Priority: 3},
	}}
	svc := newTestPlanService(t, tx, gen, nil, nil)

	_, err := svc.Assemble(context.Background(), getFitRequest(), Caller{UserID: uuid.New()})
	ae, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected api error, got %v", err)
	}
	if ae.Status != http.StatusBadGateway || ae.Code != "generation_schema_invalid" {
		t.Fatalf("unexpected api error: %d %s", ae.Status, ae.Code)
	}
	if n := countRows(t, tx, &habits.HabitPlan{}); n != 0 {
		t.Fatalf("no plan should be persisted, found %d", n)
	}
	if n := countRows(t, tx, &habits.Goal{}); n != 0 {
		t.Fatalf("goal insert should be rolled back, found %d", n)
	}
}

func TestAssembleStepFailureIsTypedAndRolledBack(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	if err := tx.Migrator().DropTable(&habits.Habit{}); err != nil {
		t.Fatalf("drop habits: %v", err)
	}
	svc := newTestPlanService(t, tx, generation.NewGateway(nil, nil, nil, generation.Config{}), nil, nil)

	_, err := svc.Assemble(context.Background(), getFitRequest(), Caller{UserID: uuid.New()})
	if err == nil {
		t.Fatalf("expected failure")
	}
	ae, ok := apierr.As(err)
	if !ok || ae.Status != http.StatusInternalServerError || ae.Code != "plan_habits_failed" {
		t.Fatalf("unexpected error: %v", err)
	}
	var stepErr *PlanStepError
	if !errors.As(err, &stepErr) || stepErr.Step != StepHabits {
		t.Fatalf("expected PlanStepError at habits, got %v", err)
	}
	if n := countRows(t, tx, &habits.HabitPlan{}); n != 0 {
		t.Fatalf("plan insert should be rolled back, found %d", n)
	}
}

func TestAssembleValidatesBeforeSideEffects(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gen := &fixedGenerator{}
	svc := newTestPlanService(t, tx, gen, nil, nil)

	_, err := svc.Assemble(context.Background(), generation.Request{GoalTitle: "  "}, Caller{UserID: uuid.New()})
	ae, ok := apierr.As(err)
	if !ok || ae.Status != http.StatusBadRequest || ae.Code != "invalid_request" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ae.Fields["goalTitle"] == "" || ae.Fields["barriers"] == "" {
		t.Fatalf("expected field details, got %v", ae.Fields)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run on invalid input")
	}
	if n := countRows(t, tx, &habits.Goal{}); n != 0 {
		t.Fatalf("no goal should be written, found %d", n)
	}
}

func TestGetPlanHidesOtherOwners(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	ctx := context.Background()
	svc := newTestPlanService(t, tx, generation.NewGateway(nil, nil, nil, generation.Config{}), nil, nil)

	owner := Caller{UserID: uuid.New()}
	res, err := svc.Assemble(ctx, getFitRequest(), owner)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	_, errOther := svc.GetPlan(ctx, res.PlanID, uuid.New())
	_, errMissing := svc.GetPlan(ctx, uuid.New(), owner.UserID)
	if !errors.Is(errOther, ErrPlanNotFound) || !errors.Is(errMissing, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound for both, got %v / %v", errOther, errMissing)
	}
}

func TestListPlansAndUpdatePhaseStatus(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	ctx := context.Background()
	svc := newTestPlanService(t, tx, generation.NewGateway(nil, nil, nil, generation.Config{}), nil, nil)

	owner := Caller{UserID: uuid.New()}
	first, err := svc.Assemble(ctx, getFitRequest(), owner)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := svc.Assemble(ctx, getFitRequest(), owner); err != nil {
		t.Fatalf("Assemble (second): %v", err)
	}

	list, err := svc.ListPlans(ctx, owner.UserID)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListPlans: want 2 got %d", len(list))
	}

	ph, err := svc.UpdatePhaseStatus(ctx, first.PlanID, owner.UserID, 2, habits.PhaseStatusActive)
	if err != nil {
		t.Fatalf("UpdatePhaseStatus: %v", err)
	}
	if ph.Status != habits.PhaseStatusActive || ph.StartDate == nil {
		t.Fatalf("unexpected phase after update: %+v", ph)
	}

	if _, err := svc.UpdatePhaseStatus(ctx, first.PlanID, uuid.New(), 2, habits.PhaseStatusCompleted); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("other owner: expected ErrPlanNotFound, got %v", err)
	}
	_, err = svc.UpdatePhaseStatus(ctx, first.PlanID, owner.UserID, 5, habits.PhaseStatusCompleted)
	if ae, ok := apierr.As(err); !ok || ae.Status != http.StatusBadRequest {
		t.Fatalf("invalid phase: expected 400, got %v", err)
	}
}

func TestValidateGenerateRequestEnforcesColumnWidths(t *testing.T) {
	long := func(n int) *string {
		s := strings.Repeat("é", n)
		return &s
	}
	ok := generation.Request{
		GoalTitle:    "Run a marathon",
		GoalCategory: long(habits.MaxLabelLen),
		Barriers:     []generation.BarrierInput{{Title: *long(habits.MaxTitleLen), Type: long(habits.MaxLabelLen)}},
	}
	if fields := ValidateGenerateRequest(ok); fields != nil {
		t.Fatalf("values at the limit should pass, got %v", fields)
	}

	cases := []struct {
		name  string
		mut   func(r *generation.Request)
		field string
	}{
		{"goal category", func(r *generation.Request) { r.GoalCategory = long(habits.MaxLabelLen + 1) }, "goalCategory"},
		{"barrier title", func(r *generation.Request) { r.Barriers[0].Title = *long(habits.MaxTitleLen + 1) }, "barriers[0].title"},
		{"barrier type", func(r *generation.Request) { r.Barriers[0].Type = long(habits.MaxLabelLen + 1) }, "barriers[0].type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := ok
			req.Barriers = []generation.BarrierInput{ok.Barriers[0]}
			tc.mut(&req)
			fields := ValidateGenerateRequest(req)
			if fields[tc.field] == "" {
				t.Fatalf("expected %s error, got %v", tc.field, fields)
			}
		})
	}
}

func TestAssembleRejectsOverlongBarrierBeforeWrites(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gen := &fixedGenerator{}
	svc := newTestPlanService(t, tx, gen, nil, nil)

	req := generation.Request{
		GoalTitle: "Run a marathon",
		Barriers:  []generation.BarrierInput{{Title: strings.Repeat("x", 300)}},
	}
	_, err := svc.Assemble(context.Background(), req, Caller{UserID: uuid.New()})
	ae, ok := apierr.As(err)
	if !ok || ae.Status != http.StatusBadRequest || ae.Fields["barriers[0].title"] == "" {
		t.Fatalf("expected 400 with barrier title detail, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not run on invalid input")
	}
	if n := countRows(t, tx, &habits.Goal{}); n != 0 {
		t.Fatalf("no goal should be written, found %d", n)
	}
}
