package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/data/repos/testutil"
	"github.com/yungbote/northstar-backend/internal/domain/user"
	"github.com/yungbote/northstar-backend/internal/platform/dbctx"
)

func TestUserRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	id := uuid.New()
	if _, err := repo.Upsert(dbc, &user.User{ID: id, Email: user.PlaceholderEmail(id)}); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	if _, err := repo.Upsert(dbc, &user.User{ID: id, Email: "runner@example.com"}); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("GetByIDs: expected 1 user, got %d", len(got))
	}
	if got[0].Email != "runner@example.com" {
		t.Fatalf("Upsert did not refresh email: %q", got[0].Email)
	}

	empty, err := repo.GetByIDs(dbc, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetByIDs(nil): err=%v len=%d", err, len(empty))
	}
}
