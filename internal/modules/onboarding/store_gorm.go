package onboarding

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/northstar-backend/internal/domain/onboarding"
)

// GormStore keeps onboarding blobs in the onboarding_states table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var rec domain.Record
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(rec.Data), true, nil
}

func (s *GormStore) Save(ctx context.Context, key string, data []byte) error {
	rec := &domain.Record{Key: key, Data: datatypes.JSON(data)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(rec).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&domain.Record{}).Error
}
