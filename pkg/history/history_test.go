package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo
}

func TestRepository_CreateAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Create(ctx, &Record{
			Operation:        "flip-horizontal",
			Threshold:        10,
			Width:            64,
			Height:           64,
			NodeCount:        21,
			CompressionRatio: 0.83,
			DurationMS:       int64(5 + i),
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recs, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// newest first
	assert.Equal(t, int64(7), recs[0].DurationMS)
	assert.Equal(t, int64(6), recs[1].DurationMS)
	assert.NotEmpty(t, recs[0].ID)
}

func TestRepository_CreateFillsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := &Record{Operation: "analyze", Threshold: 5}
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	recs, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)
}

func TestNewRepository_RequiresDB(t *testing.T) {
	_, err := NewRepository(nil)
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	// re-running on an up-to-date schema is a no-op
	require.NoError(t, migrate(ctx, db))
}
