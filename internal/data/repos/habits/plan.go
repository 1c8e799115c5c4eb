package habits

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, plan *habits.HabitPlan) (*habits.HabitPlan, error)
	// GetForUser loads a plan with its phases and habits. A plan owned by
	// someone else is reported as gorm.ErrRecordNotFound.
	GetForUser(dbc dbctx.Context, planID, userID uuid.UUID) (*habits.HabitPlan, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*habits.HabitPlan, error)
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	repoLog := baseLog.With("repo", "PlanRepo")
	return &planRepo{db: db, log: repoLog}
}

func (r *planRepo) Create(dbc dbctx.Context, plan *habits.HabitPlan) (*habits.HabitPlan, error) {
	if err := dbc.Handle(r.db).
		Omit("Phases", "Habits").
		Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *planRepo) GetForUser(dbc dbctx.Context, planID, userID uuid.UUID) (*habits.HabitPlan, error) {
	var plan habits.HabitPlan
	err := dbc.Handle(r.db).
		Preload("Phases", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("phase_number ASC")
		}).
		Preload("Habits", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("user_id = ?", userID).
				Order("phase ASC").
				Order("priority DESC").
				Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*habits.HabitPlan, error) {
	var results []*habits.HabitPlan
	if err := dbc.Handle(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
