package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB) *user.User {
	tb.Helper()
	id := uuid.New()
	u := &user.User{ID: id, Email: user.PlaceholderEmail(id)}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) *habits.Goal {
	tb.Helper()
	g := &habits.Goal{ID: uuid.New(), UserID: userID, Title: title}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func SeedBarrier(tb testing.TB, ctx context.Context, tx *gorm.DB, goal *habits.Goal, title string) *habits.Barrier {
	tb.Helper()
	b := &habits.Barrier{ID: uuid.New(), UserID: goal.UserID, GoalID: goal.ID, Title: title}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed barrier: %v", err)
	}
	return b
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, goal *habits.Goal) *habits.HabitPlan {
	tb.Helper()
	p := &habits.HabitPlan{ID: uuid.New(), UserID: goal.UserID, GoalID: goal.ID, Title: goal.Title + " - Habit Plan"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}
