package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(start time.Time) (*MemoryLimiter, *time.Time) {
	current := start
	l := NewMemoryLimiter()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestMemoryLimiter_RejectsOverLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l, _ := newTestLimiter(base)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "k1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i+1)
	}

	ok, err := l.Allow(ctx, "k1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "request over limit should be rejected")
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l, clock := newTestLimiter(base)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow(ctx, "k1", 3, time.Minute)
		require.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "k1", 3, time.Minute)
	require.False(t, ok)

	// 最早一次请求滑出窗口后应重新放行
	*clock = base.Add(time.Minute + time.Second)
	ok, err := l.Allow(ctx, "k1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiter_RejectedNotCounted(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l, clock := newTestLimiter(base)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k1", 1, time.Minute)
	require.True(t, ok)

	// 被拒绝的请求不应延长封禁
	for i := 0; i < 10; i++ {
		*clock = clock.Add(time.Second)
		ok, _ = l.Allow(ctx, "k1", 1, time.Minute)
		require.False(t, ok)
	}

	*clock = base.Add(time.Minute + time.Second)
	ok, _ = l.Allow(ctx, "k1", 1, time.Minute)
	assert.True(t, ok)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l, _ := newTestLimiter(base)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a", 1, time.Minute)
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "a", 1, time.Minute)
	require.False(t, ok)

	ok, _ = l.Allow(ctx, "b", 1, time.Minute)
	assert.True(t, ok, "different key should not share the window")
}

func TestMemoryLimiter_Purge(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l, clock := newTestLimiter(base)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a", 5, time.Minute)
	_, _ = l.Allow(ctx, "b", 5, time.Minute)

	*clock = base.Add(2 * time.Minute)
	l.Purge(time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.windows)
}
