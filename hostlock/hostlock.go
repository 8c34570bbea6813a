// Package hostlock models the host's single global serialization lock as an
// explicit resource.
//
// Host-visible code (audio sinks, participant event handlers) runs while the
// lock is held. A goroutine holding the lock carries a Token, normally inside
// its context.Context. Any operation that may block on the native core, and
// whose completion may in turn need the host lock on another thread, must run
// with the token released:
//
//	hostlock.Unlocked(ctx, func() {
//		core.AudioTrackUnregisterSink(track) // may wait for an in-flight sink call
//	})
//
// Without a token in ctx, Unlocked simply runs the function.
package hostlock

import (
	"context"
	"sync"
	"sync/atomic"
)

// Lock is a host serialization lock.
type Lock struct {
	mu   sync.Mutex
	held atomic.Bool
}

var global = New()

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{}
}

// Global returns the process-wide host lock.
func Global() *Lock {
	return global
}

// Acquire blocks until the lock is held and returns the token for the hold.
func (l *Lock) Acquire() *Token {
	l.mu.Lock()
	l.held.Store(true)
	return &Token{lock: l, held: true}
}

// Held reports whether some goroutine currently holds the lock.
// The answer may be stale by the time it is read; use it for diagnostics and
// tests only.
func (l *Lock) Held() bool {
	return l.held.Load()
}

// Do runs fn with the lock held. The context passed to fn carries the token.
func (l *Lock) Do(ctx context.Context, fn func(ctx context.Context)) {
	tok := l.Acquire()
	defer tok.Release()
	fn(NewContext(ctx, tok))
}

func (l *Lock) unlock() {
	l.held.Store(false)
	l.mu.Unlock()
}

func (l *Lock) lock() {
	l.mu.Lock()
	l.held.Store(true)
}

// Token represents one hold of a Lock. A token belongs to the goroutine that
// acquired it and is not safe for concurrent use.
type Token struct {
	lock *Lock
	held bool
}

// Held reports whether the token currently holds its lock. A nil token holds
// nothing.
func (t *Token) Held() bool {
	return t != nil && t.held
}

// Release gives up the hold. Releasing a token that is not held panics.
func (t *Token) Release() {
	if !t.Held() {
		panic("hostlock: release of a token that is not held")
	}
	t.held = false
	t.lock.unlock()
}

// Reacquire takes the lock again after Release.
func (t *Token) Reacquire() {
	if t.held {
		panic("hostlock: reacquire of a token that is already held")
	}
	t.lock.lock()
	t.held = true
}

// Unlocked runs fn with the lock released and reacquires it before
// returning, also when fn panics. With a nil or released token fn runs
// directly.
func (t *Token) Unlocked(fn func()) {
	if !t.Held() {
		fn()
		return
	}
	t.Release()
	defer t.Reacquire()
	fn()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying tok.
func NewContext(ctx context.Context, tok *Token) context.Context {
	return context.WithValue(ctx, ctxKey{}, tok)
}

// FromContext returns the token carried by ctx, or nil.
func FromContext(ctx context.Context) *Token {
	if ctx == nil {
		return nil
	}
	tok, _ := ctx.Value(ctxKey{}).(*Token)
	return tok
}

// Unlocked runs fn with the token carried by ctx released.
func Unlocked(ctx context.Context, fn func()) {
	FromContext(ctx).Unlocked(fn)
}
