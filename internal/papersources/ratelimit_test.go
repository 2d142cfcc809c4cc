package papersources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within burst", func(t *testing.T) {
		rl := NewRateLimiter(1, 3)

		assert.True(t, rl.Allow())
		assert.True(t, rl.Allow())
		assert.True(t, rl.Allow())
		assert.False(t, rl.Allow())
	})

	t.Run("wait returns immediately when tokens are available", func(t *testing.T) {
		rl := NewRateLimiter(100, 10)

		start := time.Now()
		err := rl.Wait(context.Background())

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("wait honors context cancellation", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1)
		require.True(t, rl.Allow())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := rl.Wait(ctx)
		assert.Error(t, err)
	})

	t.Run("set rate takes effect", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1)
		require.True(t, rl.Allow())
		require.False(t, rl.Allow())

		rl.SetRate(1000)
		time.Sleep(10 * time.Millisecond)

		assert.True(t, rl.Allow())
	})

	t.Run("tokens reports remaining capacity", func(t *testing.T) {
		rl := NewRateLimiter(1, 5)

		assert.InDelta(t, 5, rl.Tokens(), 0.1)
		rl.Allow()
		assert.InDelta(t, 4, rl.Tokens(), 0.1)
	})
}
