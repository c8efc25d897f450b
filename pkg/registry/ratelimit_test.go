package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	assert := assert.New(t)

	limiter := newRateLimiter(3, 1*time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.Equal(3, limiter.used())
}

func TestLimiterSuspendsUntilWindowRollsOver(t *testing.T) {
	assert := assert.New(t)

	limiter := newRateLimiter(2, 50*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))

	// The third wait must block until the first request falls out of the window
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(time.Since(start), 30*time.Millisecond)
}

func TestLimiterHonorsContextCancellation(t *testing.T) {
	assert := assert.New(t)

	limiter := newRateLimiter(1, 1*time.Minute)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := limiter.Wait(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func TestLimiterPrunesOldStamps(t *testing.T) {
	assert := assert.New(t)

	limiter := newRateLimiter(5, 30*time.Millisecond)
	require.NoError(t, limiter.Wait(context.Background()))
	require.NoError(t, limiter.Wait(context.Background()))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(0, limiter.used())
}
