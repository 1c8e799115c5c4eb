package habits

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type HabitRepo interface {
	Create(dbc dbctx.Context, hs []*habits.Habit) ([]*habits.Habit, error)
	GetByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) ([]*habits.Habit, error)
	CountByCategory(dbc dbctx.Context, planID uuid.UUID) (map[habits.Category]int, error)
}

type habitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHabitRepo(db *gorm.DB, baseLog *logger.Logger) HabitRepo {
	repoLog := baseLog.With("repo", "HabitRepo")
	return &habitRepo{db: db, log: repoLog}
}

func (r *habitRepo) Create(dbc dbctx.Context, hs []*habits.Habit) ([]*habits.Habit, error) {
	if len(hs) == 0 {
		return []*habits.Habit{}, nil
	}
	if err := dbc.Handle(r.db).Create(&hs).Error; err != nil {
		return nil, err
	}
	return hs, nil
}

func (r *habitRepo) GetByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) ([]*habits.Habit, error) {
	var results []*habits.Habit
	if len(planIDs) == 0 {
		return results, nil
	}
	if err := dbc.Handle(r.db).
		Where("plan_id IN ?", planIDs).
		Order("phase ASC").
		Order("priority DESC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *habitRepo) CountByCategory(dbc dbctx.Context, planID uuid.UUID) (map[habits.Category]int, error) {
	var rows []struct {
		Category habits.Category
		N        int
	}
	if err := dbc.Handle(r.db).
		Model(&habits.Habit{}).
		Select("category, COUNT(*) AS n").
		Where("plan_id = ?", planID).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[habits.Category]int, len(habits.Categories))
	for _, c := range habits.Categories {
		out[c] = 0
	}
	for _, row := range rows {
		out[row.Category] = row.N
	}
	return out, nil
}
