package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type PlanPhaseRepo interface {
	Create(dbc dbctx.Context, phases []*habits.PlanPhase) ([]*habits.PlanPhase, error)
	GetByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*habits.PlanPhase, error)
	// UpdateStatus sets a phase's status. Becoming active stamps start_date,
	// becoming completed or skipped stamps end_date.
	UpdateStatus(dbc dbctx.Context, planID uuid.UUID, phase habits.Phase, status habits.PhaseStatus, at time.Time) (*habits.PlanPhase, error)
}

type planPhaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanPhaseRepo(db *gorm.DB, baseLog *logger.Logger) PlanPhaseRepo {
	repoLog := baseLog.With("repo", "PlanPhaseRepo")
	return &planPhaseRepo{db: db, log: repoLog}
}

func (r *planPhaseRepo) Create(dbc dbctx.Context, phases []*habits.PlanPhase) ([]*habits.PlanPhase, error) {
	if len(phases) == 0 {
		return []*habits.PlanPhase{}, nil
	}
	if err := dbc.Handle(r.db).Create(&phases).Error; err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *planPhaseRepo) GetByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*habits.PlanPhase, error) {
	var results []*habits.PlanPhase
	if err := dbc.Handle(r.db).
		Where("plan_id = ?", planID).
		Order("phase_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *planPhaseRepo) UpdateStatus(dbc dbctx.Context, planID uuid.UUID, phase habits.Phase, status habits.PhaseStatus, at time.Time) (*habits.PlanPhase, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case habits.PhaseStatusActive:
		updates["start_date"] = at
	case habits.PhaseStatusCompleted, habits.PhaseStatusSkipped:
		updates["end_date"] = at
	}

	transaction := dbc.Handle(r.db)
	res := transaction.Model(&habits.PlanPhase{}).
		Where("plan_id = ? AND phase_number = ?", planID, phase).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var out habits.PlanPhase
	if err := transaction.
		Where("plan_id = ? AND phase_number = ?", planID, phase).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
