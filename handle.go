package dyte

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/dyte-io/dyte-go/internal/native"
)

// Handle owns one native object reference and releases it exactly once.
//
// Handles are created right after the native call that returned the
// reference and are never copied. Close releases deterministically; a handle
// that becomes unreachable without Close is released by the garbage
// collector.
type Handle struct {
	_ noCopy

	core   native.Core
	kind   string
	ref    native.Ref
	closed atomic.Bool
}

// acquire takes ownership of ref. A null ref is a contract violation of the
// native core and panics.
func acquire(core native.Core, kind string, ref native.Ref) *Handle {
	if ref.IsNull() {
		panic(fmt.Errorf("%w: %s", ErrNullHandle, kind))
	}
	h := &Handle{core: core, kind: kind, ref: ref}
	runtime.SetFinalizer(h, (*Handle).finalize)
	return h
}

// Ref returns the owned reference. Using a closed handle panics.
func (h *Handle) Ref() native.Ref {
	if h.closed.Load() {
		panic(fmt.Errorf("%w: %s handle used after Close", ErrClosed, h.kind))
	}
	return h.ref
}

// Kind names the native type, for diagnostics.
func (h *Handle) Kind() string { return h.kind }

// Closed reports whether the reference has been released.
func (h *Handle) Closed() bool { return h.closed.Load() }

// Close releases the reference. Later calls are no-ops.
func (h *Handle) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(h, nil)
	h.core.DisposeStablePointer(h.ref)
}

func (h *Handle) finalize() {
	if h.closed.CompareAndSwap(false, true) {
		logger().Debug("releasing unreachable handle", "kind", h.kind)
		h.core.DisposeStablePointer(h.ref)
	}
}

func (h *Handle) String() string {
	state := "open"
	if h.closed.Load() {
		state = "closed"
	}
	return fmt.Sprintf("%s(%#x, %s)", h.kind, uintptr(h.ref), state)
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

const (
	kindMeetingBuilder = "MeetingBuilder"
	kindSession        = "Session"
	kindMeetingInfo    = "MeetingInfo"
	kindSuccessCb      = "SuccessCallback"
	kindFailureCb      = "FailureCallback"
	kindListener       = "ParticipantEventsListener"
	kindParticipant    = "Participant"
	kindAudioTrack     = "AudioTrack"
)
