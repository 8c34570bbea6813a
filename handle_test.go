package dyte

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/dyte-io/dyte-go/internal/native/nativetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireNullPanics(t *testing.T) {
	core := nativetest.New()

	v := recoverValue(func() { acquire(core, kindSession, 0) })

	err, ok := v.(error)
	require.True(t, ok, "panic value should be an error, got %v", v)
	assert.True(t, errors.Is(err, ErrNullHandle))
	assert.Contains(t, err.Error(), kindSession)
}

func TestHandleCloseDisposesOnce(t *testing.T) {
	core := nativetest.New()
	ref := core.NewMeetingBuilder()

	h := acquire(core, kindMeetingBuilder, ref)
	assert.Equal(t, ref, h.Ref())
	assert.False(t, h.Closed())

	h.Close()
	h.Close()

	assert.True(t, h.Closed())
	assert.False(t, core.IsLive(ref))
	assert.Empty(t, core.Violations())
}

func TestHandleRefAfterClosePanics(t *testing.T) {
	core := nativetest.New()
	h := acquire(core, kindMeetingBuilder, core.NewMeetingBuilder())
	h.Close()

	v := recoverValue(func() { h.Ref() })

	err, ok := v.(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHandleString(t *testing.T) {
	core := nativetest.New()
	h := acquire(core, kindMeetingBuilder, core.NewMeetingBuilder())
	assert.Contains(t, h.String(), "MeetingBuilder")
	assert.Contains(t, h.String(), "open")
	h.Close()
	assert.Contains(t, h.String(), "closed")
}

func TestHandleReleasedWhenUnreachable(t *testing.T) {
	core := nativetest.New()
	ref := core.NewMeetingBuilder()

	func() {
		acquire(core, kindMeetingBuilder, ref)
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return !core.IsLive(ref)
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, core.Violations())
}
