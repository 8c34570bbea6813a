package dyte

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dyte-io/dyte-go/internal/handles"
	"github.com/dyte-io/dyte-go/internal/native"
)

// CompletionBridge turns a native success/failure callback pair into a
// blocking wait.
//
// The core fires exactly one of the two callbacks, on a thread of its
// choosing, and possibly before the native call that received them has
// returned. A second completion is a protocol violation and panics.
type CompletionBridge struct {
	core native.Core
	id   uintptr

	success *Handle
	failure *Handle

	result    chan bool
	completed atomic.Bool
	waited    atomic.Bool

	mu        sync.Mutex
	abandoned bool // close once completion arrives
	closeOnce sync.Once
}

// completionTarget is what the userData handle resolves to.
type completionTarget struct{ b *CompletionBridge }

func (t completionTarget) Complete(ok bool) { t.b.complete(ok) }

// NewCompletionBridge registers a pending operation and creates its
// success and failure callback objects on core.
func NewCompletionBridge(core Core) *CompletionBridge {
	b := &CompletionBridge{core: core, result: make(chan bool, 1)}
	b.id = handles.Register(completionTarget{b})
	b.success = acquire(core, kindSuccessCb, core.NewSuccessCallback(b.id))
	b.failure = acquire(core, kindFailureCb, core.NewFailureCallback(b.id))
	return b
}

// SuccessRef and FailureRef are the callback objects to pass to the native
// operation.
func (b *CompletionBridge) SuccessRef() native.Ref { return b.success.Ref() }
func (b *CompletionBridge) FailureRef() native.Ref { return b.failure.Ref() }

func (b *CompletionBridge) complete(ok bool) {
	if !b.completed.CompareAndSwap(false, true) {
		panic("dyte: native operation completed twice")
	}

	b.mu.Lock()
	b.result <- ok
	abandoned := b.abandoned
	b.mu.Unlock()

	if abandoned {
		b.release()
	}
}

// Wait blocks until the operation completes and reports whether it
// succeeded. Wait must be called at most once, with the host lock released.
func (b *CompletionBridge) Wait() bool {
	b.markWaited()
	return <-b.result
}

// WaitContext is Wait that also returns when ctx is done. The bridge then
// stays registered until the native completion arrives and releases itself.
func (b *CompletionBridge) WaitContext(ctx context.Context) (bool, error) {
	b.markWaited()
	select {
	case ok := <-b.result:
		return ok, nil
	case <-ctx.Done():
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case ok := <-b.result:
		return ok, nil
	default:
	}
	b.abandoned = true
	return false, ctx.Err()
}

func (b *CompletionBridge) markWaited() {
	if !b.waited.CompareAndSwap(false, true) {
		panic("dyte: CompletionBridge waited on twice")
	}
}

// Done reports whether a completion has arrived.
func (b *CompletionBridge) Done() bool { return b.completed.Load() }

// Close releases both callback objects and the userData registration. Before
// completion Close only marks the bridge; the release happens when the
// completion arrives.
func (b *CompletionBridge) Close() {
	b.mu.Lock()
	if !b.completed.Load() {
		b.abandoned = true
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.release()
}

func (b *CompletionBridge) release() {
	b.closeOnce.Do(func() {
		handles.Unregister(b.id)
		b.success.Close()
		b.failure.Close()
	})
}
