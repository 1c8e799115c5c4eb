package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Habit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"goal_id"`
	PlanID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_id"`
	BarrierID *uuid.UUID `gorm:"type:uuid;index" json:"barrier_id,omitempty"`

	Title       string   `gorm:"type:varchar(255);not null" json:"title"`
	Description string   `gorm:"type:text;not null;default:''" json:"description"`
	Category    Category `gorm:"type:varchar(32);not null;index" json:"category"`
	Phase       Phase    `gorm:"not null" json:"phase"`
	Frequency   string   `gorm:"type:varchar(100);not null;default:''" json:"frequency"`
	Duration    *int     `json:"duration,omitempty"`
	Priority    int      `gorm:"not null" json:"priority"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Habit) TableName() string { return "habits" }
