package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryClearGuard(t *testing.T) {
	t.Run("marked IDs stay active inside the window", func(t *testing.T) {
		clock := &stepClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
		guard := NewInMemoryClearGuard(WithGuardClock(clock))

		id := uuid.New()
		guard.Mark(id)

		clock.Advance(4 * time.Second)
		assert.True(t, guard.ActiveIDs()[id])
	})

	t.Run("marks expire after the window", func(t *testing.T) {
		clock := &stepClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
		guard := NewInMemoryClearGuard(WithGuardClock(clock))

		id := uuid.New()
		guard.Mark(id)

		clock.Advance(6 * time.Second)
		assert.False(t, guard.ActiveIDs()[id])
		assert.Equal(t, 0, guard.Size())
	})

	t.Run("re-marking resets the window", func(t *testing.T) {
		clock := &stepClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
		guard := NewInMemoryClearGuard(WithGuardClock(clock))

		id := uuid.New()
		guard.Mark(id)
		clock.Advance(4 * time.Second)
		guard.Mark(id)
		clock.Advance(4 * time.Second)

		assert.True(t, guard.ActiveIDs()[id])
	})

	t.Run("custom window", func(t *testing.T) {
		clock := &stepClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
		guard := NewInMemoryClearGuard(WithGuardClock(clock), WithGuardWindow(time.Minute))

		id := uuid.New()
		guard.Mark(id)

		clock.Advance(30 * time.Second)
		assert.True(t, guard.ActiveIDs()[id])
		clock.Advance(31 * time.Second)
		assert.False(t, guard.ActiveIDs()[id])
	})

	t.Run("concurrent use", func(t *testing.T) {
		guard := NewInMemoryClearGuard(WithGuardClock(shared.SystemClock{}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				guard.Mark(uuid.New())
				guard.ActiveIDs()
			}()
		}
		wg.Wait()

		require.Equal(t, 20, guard.Size())
	})
}
