package lease

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
)

func TestMemoryLockerExclusion(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	require.NoError(t, locker.Acquire(ctx, "w1", time.Minute))

	err := locker.Acquire(ctx, "w1", time.Minute)
	require.Error(t, err)
	assert.True(t, sperrors.IsCategory(err, sperrors.CategoryConflict))

	// Different website is independent.
	require.NoError(t, locker.Acquire(ctx, "w2", time.Minute))
}

func TestMemoryLockerReleaseFrees(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	require.NoError(t, locker.Acquire(ctx, "w1", time.Minute))
	require.NoError(t, locker.Release(ctx, "w1"))
	require.NoError(t, locker.Acquire(ctx, "w1", time.Minute))
}

func TestMemoryLockerReleaseUnheldIsNoop(t *testing.T) {
	locker := NewMemoryLocker()
	require.NoError(t, locker.Release(context.Background(), "w1"))
}

func TestMemoryLockerExpiry(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	now := time.Now()
	locker.SetClock(func() time.Time { return now })
	require.NoError(t, locker.Acquire(ctx, "w1", 10*time.Minute))

	// Crashed pipeline never releases; the lease expires on its own.
	now = now.Add(11 * time.Minute)
	require.NoError(t, locker.Acquire(ctx, "w1", 10*time.Minute))
}
