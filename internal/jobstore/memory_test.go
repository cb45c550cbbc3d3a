package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestMemoryStoreWriteRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	job := &PublishJob{
		ID:        "j1",
		WebsiteID: "w1",
		Status:    StatusQueued,
		Progress:  0,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Write(ctx, job, time.Hour))

	got, err := store.Read(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, got.Status)
	assert.Equal(t, "w1", got.WebsiteID)

	// Reads return a copy; mutating it doesn't affect the store.
	got.Status = StatusFailed
	again, err := store.Read(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, again.Status)
}

func TestMemoryStoreReadMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Read(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryNotFound))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	job := &PublishJob{ID: "j1", WebsiteID: "w1", Status: StatusCompleted, Progress: 100}
	require.NoError(t, store.Write(ctx, job, time.Hour))

	_, err := store.Read(ctx, "j1")
	require.NoError(t, err)

	store.SetClock(func() time.Time { return now.Add(2 * time.Hour) })
	_, err = store.Read(ctx, "j1")
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryNotFound))
}

func TestMemoryStoreWriteRefreshesTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	job := &PublishJob{ID: "j1", Status: StatusQueued}
	require.NoError(t, store.Write(ctx, job, time.Hour))

	// Rewrite near expiry extends the record's life.
	now = now.Add(50 * time.Minute)
	job.Status = StatusProcessing
	job.Progress = 40
	require.NoError(t, store.Write(ctx, job, time.Hour))

	now = now.Add(50 * time.Minute)
	got, err := store.Read(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
	assert.Equal(t, 40, got.Progress)
}
