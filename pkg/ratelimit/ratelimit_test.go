package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AllowAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := newTokenBucket(2, 4, func() time.Time { return now })

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "桶已空")
	assert.Equal(t, 250*time.Millisecond, tb.RetryAfter())

	now = now.Add(250 * time.Millisecond)
	assert.Zero(t, tb.RetryAfter())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	now = now.Add(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "补充不超过容量")
}

func TestTokenBucket_ZeroRate(t *testing.T) {
	tb := NewTokenBucket(1, 0)
	require.True(t, tb.Allow())
	assert.False(t, tb.Allow())
	assert.Zero(t, tb.RetryAfter())
}
