package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/northstar-backend/internal/domain/user"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type UserRepo interface {
	Upsert(dbc dbctx.Context, u *user.User) (*user.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// Upsert inserts the user or refreshes its email when the id already exists.
func (ur *userRepo) Upsert(dbc dbctx.Context, u *user.User) (*user.User, error) {
	if err := dbc.Handle(ur.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
		}).
		Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error) {
	var results []*user.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Handle(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
