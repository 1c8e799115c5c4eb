package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the external identity. Rows are upserted on first plan generation.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email string    `gorm:"not null;column:email" json:"email"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

// PlaceholderEmail is used when the identity provider did not supply an email.
func PlaceholderEmail(userID uuid.UUID) string {
	return userID.String() + "@habit-ai.local"
}
