package onboarding

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/northstar-backend/internal/data/repos/testutil"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, StorageKey, []byte(`{"step":2}`)))
	require.NoError(t, store.Save(ctx, StorageKey, []byte(`{"step":3}`)))
	raw, ok, err := store.Load(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"step":3}`, string(raw))

	require.NoError(t, store.Delete(ctx, StorageKey))
	_, ok, err = store.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	exerciseStore(t, NewFileStore(path))

	store := NewFileStore(path)
	require.NoError(t, store.Save(context.Background(), "other", []byte(`{"a":1}`)))
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Error(t, store.Save(context.Background(), "bad", []byte("{")))
}

func TestGormStore(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	exerciseStore(t, NewGormStore(tx))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis store tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	prefix := "northstar-test:" + time.Now().Format("150405.000000") + ":"
	exerciseStore(t, NewRedisStore(rdb, prefix, time.Minute))
}

func TestMachineWithFileStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	gen := &fakeGenerator{}

	m := NewMachine(nil, NewFileStore(path), gen, "")
	require.NoError(t, m.SetGoal(ctx, "Ship the side project"))
	require.NoError(t, m.NextStep(ctx))

	again := NewMachine(nil, NewFileStore(path), gen, "")
	require.NoError(t, again.Load(ctx))
	v := again.Snapshot()
	assert.Equal(t, StepBarriers, v.Step)
	assert.Equal(t, "Ship the side project", v.NorthStarGoal)
}
