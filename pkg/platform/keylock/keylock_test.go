package keylock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "surety/pkg/domain-errors"
)

func TestWithKey(t *testing.T) {
	t.Run("serializes writers on the same key", func(t *testing.T) {
		lock := New(0)
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = lock.WithKey(context.Background(), "0xabc", func(context.Context) error {
					v := counter
					counter = v + 1
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 200, counter)
	})

	t.Run("cancelled context never runs the callback", func(t *testing.T) {
		lock := New(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ran := false
		err := lock.WithKey(ctx, "k", func(context.Context) error {
			ran = true
			return nil
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.False(t, ran)
	})

	t.Run("shard is stable", func(t *testing.T) {
		assert.Equal(t, Shard("0xabc"), Shard("0xabc"))
		assert.Less(t, Shard("anything"), NumShards)
	})
}
