package habits

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type BarrierRepo interface {
	Create(dbc dbctx.Context, barriers []*habits.Barrier) ([]*habits.Barrier, error)
	GetByGoalIDs(dbc dbctx.Context, goalIDs []uuid.UUID) ([]*habits.Barrier, error)
}

type barrierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBarrierRepo(db *gorm.DB, baseLog *logger.Logger) BarrierRepo {
	repoLog := baseLog.With("repo", "BarrierRepo")
	return &barrierRepo{db: db, log: repoLog}
}

// Create inserts the barriers in one batch, preserving input order.
func (r *barrierRepo) Create(dbc dbctx.Context, barriers []*habits.Barrier) ([]*habits.Barrier, error) {
	if len(barriers) == 0 {
		return []*habits.Barrier{}, nil
	}
	if err := dbc.Handle(r.db).Create(&barriers).Error; err != nil {
		return nil, err
	}
	return barriers, nil
}

func (r *barrierRepo) GetByGoalIDs(dbc dbctx.Context, goalIDs []uuid.UUID) ([]*habits.Barrier, error) {
	var results []*habits.Barrier
	if len(goalIDs) == 0 {
		return results, nil
	}
	if err := dbc.Handle(r.db).
		Where("goal_id IN ?", goalIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
