package habits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/data/repos/testutil"
	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
)

func TestGoalAndBarrierRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	u := testutil.SeedUser(t, ctx, tx)

	goals := NewGoalRepo(db, testutil.Logger(t))
	barriers := NewBarrierRepo(db, testutil.Logger(t))

	g := &habits.Goal{ID: uuid.New(), UserID: u.ID, Title: "Get Fit"}
	if _, err := goals.Create(dbc, []*habits.Goal{g}); err != nil {
		t.Fatalf("GoalRepo.Create: %v", err)
	}
	if rows, err := goals.GetByIDs(dbc, []uuid.UUID{g.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GoalRepo.GetByIDs: err=%v len=%d", err, len(rows))
	}

	created, err := barriers.Create(dbc, []*habits.Barrier{
		{ID: uuid.New(), UserID: u.ID, GoalID: g.ID, Title: "Lack of time"},
		{ID: uuid.New(), UserID: u.ID, GoalID: g.ID, Title: "Low energy"},
	})
	if err != nil {
		t.Fatalf("BarrierRepo.Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("BarrierRepo.Create: expected 2 rows, got %d", len(created))
	}
	if rows, err := barriers.GetByGoalIDs(dbc, []uuid.UUID{g.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("BarrierRepo.GetByGoalIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := barriers.Create(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("BarrierRepo.Create(nil): err=%v len=%d", err, len(rows))
	}
}

func TestPlanRepoGetForUserScopesByOwner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	logg := testutil.Logger(t)

	owner := testutil.SeedUser(t, ctx, tx)
	other := testutil.SeedUser(t, ctx, tx)
	goal := testutil.SeedGoal(t, ctx, tx, owner.ID, "Read more")

	plans := NewPlanRepo(db, logg)
	phases := NewPlanPhaseRepo(db, logg)
	hs := NewHabitRepo(db, logg)

	plan := &habits.HabitPlan{ID: uuid.New(), UserID: owner.ID, GoalID: goal.ID, Title: "Read more - Habit Plan", Phase1Count: 1, Phase2Count: 1}
	if _, err := plans.Create(dbc, plan); err != nil {
		t.Fatalf("PlanRepo.Create: %v", err)
	}
	var rows []*habits.PlanPhase
	for _, n := range []habits.Phase{4, 2, 3, 1} {
		status := habits.PhaseStatusPending
		if n == 1 {
			status = habits.PhaseStatusActive
		}
		rows = append(rows, &habits.PlanPhase{ID: uuid.New(), PlanID: plan.ID, PhaseNumber: n, Status: status})
	}
	if _, err := phases.Create(dbc, rows); err != nil {
		t.Fatalf("PlanPhaseRepo.Create: %v", err)
	}
	if _, err := hs.Create(dbc, []*habits.Habit{
		{ID: uuid.New(), UserID: owner.ID, GoalID: goal.ID, PlanID: plan.ID, Title: "Later", Category: habits.CategoryGoalSpecific, Phase: 2, Priority: 9},
		{ID: uuid.New(), UserID: owner.ID, GoalID: goal.ID, PlanID: plan.ID, Title: "Low", Category: habits.CategoryFoundational, Phase: 1, Priority: 3},
		{ID: uuid.New(), UserID: owner.ID, GoalID: goal.ID, PlanID: plan.ID, Title: "High", Category: habits.CategoryFoundational, Phase: 1, Priority: 8},
	}); err != nil {
		t.Fatalf("HabitRepo.Create: %v", err)
	}

	got, err := plans.GetForUser(dbc, plan.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if len(got.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(got.Phases))
	}
	for i, ph := range got.Phases {
		if int(ph.PhaseNumber) != i+1 {
			t.Fatalf("phases not ordered: index %d has phase %d", i, ph.PhaseNumber)
		}
	}
	if got.Phases[0].Status != habits.PhaseStatusActive || got.Phases[1].Status != habits.PhaseStatusPending {
		t.Fatalf("unexpected statuses: %s %s", got.Phases[0].Status, got.Phases[1].Status)
	}
	titles := []string{}
	for _, h := range got.Habits {
		titles = append(titles, h.Title)
	}
	if len(titles) != 3 || titles[0] != "High" || titles[1] != "Low" || titles[2] != "Later" {
		t.Fatalf("habits not ordered by phase then priority: %v", titles)
	}

	if _, err := plans.GetForUser(dbc, plan.ID, other.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetForUser(other owner): expected ErrRecordNotFound, got %v", err)
	}
	if _, err := plans.GetForUser(dbc, uuid.New(), owner.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetForUser(missing): expected ErrRecordNotFound, got %v", err)
	}

	counts, err := hs.CountByCategory(dbc, plan.ID)
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if counts[habits.CategoryFoundational] != 2 || counts[habits.CategoryGoalSpecific] != 1 || counts[habits.CategoryBarrierTargeting] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestPlanRepoListByUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx)
	goal := testutil.SeedGoal(t, ctx, tx, u.ID, "Sleep better")
	testutil.SeedPlan(t, ctx, tx, goal)
	testutil.SeedPlan(t, ctx, tx, goal)
	stranger := testutil.SeedUser(t, ctx, tx)
	testutil.SeedPlan(t, ctx, tx, testutil.SeedGoal(t, ctx, tx, stranger.ID, "Other"))

	rows, err := NewPlanRepo(db, testutil.Logger(t)).ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByUser: expected 2 plans, got %d", len(rows))
	}
}

func TestPlanPhaseRepoUpdateStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx)
	plan := testutil.SeedPlan(t, ctx, tx, testutil.SeedGoal(t, ctx, tx, u.ID, "Focus"))
	repo := NewPlanPhaseRepo(db, testutil.Logger(t))
	if _, err := repo.Create(dbc, []*habits.PlanPhase{
		{ID: uuid.New(), PlanID: plan.ID, PhaseNumber: 1, Status: habits.PhaseStatusActive},
		{ID: uuid.New(), PlanID: plan.ID, PhaseNumber: 2, Status: habits.PhaseStatusPending},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	done, err := repo.UpdateStatus(dbc, plan.ID, 1, habits.PhaseStatusCompleted, at)
	if err != nil {
		t.Fatalf("UpdateStatus(completed): %v", err)
	}
	if done.Status != habits.PhaseStatusCompleted || done.EndDate == nil || !done.EndDate.Equal(at) {
		t.Fatalf("unexpected completed phase: %+v", done)
	}

	next, err := repo.UpdateStatus(dbc, plan.ID, 2, habits.PhaseStatusActive, at)
	if err != nil {
		t.Fatalf("UpdateStatus(active): %v", err)
	}
	if next.StartDate == nil || next.EndDate != nil {
		t.Fatalf("active phase should only stamp start_date: %+v", next)
	}

	if _, err := repo.UpdateStatus(dbc, plan.ID, 3, habits.PhaseStatusActive, at); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("UpdateStatus(missing phase): expected ErrRecordNotFound, got %v", err)
	}
}
