package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/data/repos/habits"
	"github.com/yungbote/northstar-backend/internal/data/repos/user"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type GoalRepo = habits.GoalRepo
type BarrierRepo = habits.BarrierRepo
type PlanRepo = habits.PlanRepo
type PlanPhaseRepo = habits.PlanPhaseRepo
type HabitRepo = habits.HabitRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return habits.NewGoalRepo(db, baseLog)
}
func NewBarrierRepo(db *gorm.DB, baseLog *logger.Logger) BarrierRepo {
	return habits.NewBarrierRepo(db, baseLog)
}
func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return habits.NewPlanRepo(db, baseLog)
}
func NewPlanPhaseRepo(db *gorm.DB, baseLog *logger.Logger) PlanPhaseRepo {
	return habits.NewPlanPhaseRepo(db, baseLog)
}
func NewHabitRepo(db *gorm.DB, baseLog *logger.Logger) HabitRepo {
	return habits.NewHabitRepo(db, baseLog)
}

// TxRunner provides a shared transaction boundary for multi-repo writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errors.New("transaction runner has nil db")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
