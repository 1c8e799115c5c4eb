package habits

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type GoalRepo interface {
	Create(dbc dbctx.Context, goals []*habits.Goal) ([]*habits.Goal, error)
	GetByIDs(dbc dbctx.Context, goalIDs []uuid.UUID) ([]*habits.Goal, error)
}

type goalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	repoLog := baseLog.With("repo", "GoalRepo")
	return &goalRepo{db: db, log: repoLog}
}

func (r *goalRepo) Create(dbc dbctx.Context, goals []*habits.Goal) ([]*habits.Goal, error) {
	if len(goals) == 0 {
		return []*habits.Goal{}, nil
	}
	if err := dbc.Handle(r.db).Create(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepo) GetByIDs(dbc dbctx.Context, goalIDs []uuid.UUID) ([]*habits.Goal, error) {
	var results []*habits.Goal
	if len(goalIDs) == 0 {
		return results, nil
	}
	if err := dbc.Handle(r.db).
		Where("id IN ?", goalIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
