package hostlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	l := New()
	require.False(t, l.Held())

	tok := l.Acquire()
	require.True(t, tok.Held())
	require.True(t, l.Held())

	tok.Release()
	assert.False(t, tok.Held())
	assert.False(t, l.Held())
}

func TestReleaseUnheldPanics(t *testing.T) {
	var tok *Token
	assert.Panics(t, func() { tok.Release() })

	held := New().Acquire()
	held.Release()
	assert.Panics(t, func() { held.Release() })
}

func TestUnlockedReleasesForTheDuration(t *testing.T) {
	l := New()
	tok := l.Acquire()
	defer tok.Release()

	tok.Unlocked(func() {
		assert.False(t, l.Held())
		other := l.Acquire()
		other.Release()
	})
	assert.True(t, tok.Held())
	assert.True(t, l.Held())
}

func TestUnlockedReacquiresAfterPanic(t *testing.T) {
	l := New()
	tok := l.Acquire()
	defer tok.Release()

	assert.Panics(t, func() {
		tok.Unlocked(func() { panic("boom") })
	})
	assert.True(t, tok.Held())
}

func TestUnlockedWithoutToken(t *testing.T) {
	ran := false
	Unlocked(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestDoCarriesTokenInContext(t *testing.T) {
	l := New()
	l.Do(context.Background(), func(ctx context.Context) {
		tok := FromContext(ctx)
		require.NotNil(t, tok)
		assert.True(t, tok.Held())
	})
	assert.False(t, l.Held())
}

// A goroutine holding the lock waits on work that itself needs the lock.
// Releasing the token around the wait is what keeps this from deadlocking.
func TestUnlockedAvoidsWaitDeadlock(t *testing.T) {
	l := New()
	done := make(chan struct{})

	go l.Do(context.Background(), func(ctx context.Context) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Do(context.Background(), func(context.Context) {})
		}()

		Unlocked(ctx, func() {
			wg.Wait()
		})
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deadlocked waiting for a lock-needing goroutine")
	}
}

func TestGlobalIsShared(t *testing.T) {
	assert.Same(t, Global(), Global())
}
