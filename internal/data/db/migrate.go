package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/domain/onboarding"
	"github.com/yungbote/northstar-backend/internal/domain/user"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&user.User{},

		&habits.Goal{},
		&habits.Barrier{},
		&habits.HabitPlan{},
		&habits.PlanPhase{},
		&habits.Habit{},

		&onboarding.Record{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
