package habits

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HabitPlan aggregates one generation. Phase counts are derived at insert time.
type HabitPlan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalID      uuid.UUID `gorm:"type:uuid;not null;index" json:"goal_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	Phase1Count int `gorm:"column:phase1_count;not null;default:0" json:"phase1_count"`
	Phase2Count int `gorm:"column:phase2_count;not null;default:0" json:"phase2_count"`
	Phase3Count int `gorm:"column:phase3_count;not null;default:0" json:"phase3_count"`
	Phase4Count int `gorm:"column:phase4_count;not null;default:0" json:"phase4_count"`

	Phases []PlanPhase `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`
	Habits []Habit     `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"habits,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (HabitPlan) TableName() string { return "habit_plans" }

// PhaseCounts returns the four counts indexed by phase-1.
func (p HabitPlan) PhaseCounts() [4]int {
	return [4]int{p.Phase1Count, p.Phase2Count, p.Phase3Count, p.Phase4Count}
}

type PlanPhase struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_plan_phase_number" json:"plan_id"`
	PhaseNumber Phase       `gorm:"not null;uniqueIndex:idx_plan_phase_number" json:"phase_number"`
	Status      PhaseStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	EndDate     *time.Time  `json:"end_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (PlanPhase) TableName() string { return "plan_phases" }
