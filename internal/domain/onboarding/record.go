package onboarding

import (
	"time"

	"gorm.io/datatypes"
)

// Record holds one persisted onboarding blob, addressed by storage key.
type Record struct {
	Key  string         `gorm:"column:state_key;type:varchar(255);primaryKey" json:"key"`
	Data datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string { return "onboarding_states" }
