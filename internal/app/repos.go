package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/data/repos"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type Repos struct {
	User    repos.UserRepo
	Goal    repos.GoalRepo
	Barrier repos.BarrierRepo
	Plan    repos.PlanRepo
	Phase   repos.PlanPhaseRepo
	Habit   repos.HabitRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:    repos.NewUserRepo(db, log),
		Goal:    repos.NewGoalRepo(db, log),
		Barrier: repos.NewBarrierRepo(db, log),
		Plan:    repos.NewPlanRepo(db, log),
		Phase:   repos.NewPlanPhaseRepo(db, log),
		Habit:   repos.NewHabitRepo(db, log),
	}
}
