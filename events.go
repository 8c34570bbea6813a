package dyte

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/dyte-io/dyte-go/internal/handles"
	"github.com/dyte-io/dyte-go/internal/native"
)

// Handlers receive participant events. They run on native threads with the
// host lock held; ctx carries the lock token. Nil handlers are skipped.
type Handlers struct {
	OnJoin        func(ctx context.Context, p *Participant)
	OnLeave       func(ctx context.Context, p *Participant)
	OnAudioUpdate func(ctx context.Context, enabled bool, p *Participant)
}

type presence int

const (
	presenceUnseen presence = iota
	presenceActive
)

func (s presence) String() string {
	if s == presenceActive {
		return "active"
	}
	return "unseen"
}

// EventBridge owns a native participant events listener and routes its
// events through a session's ParticipantCache to Handlers.
//
// The core promises join before any update or leave for a participant, and
// nothing after its leave. The bridge checks that promise and logs
// violations; it never drops an event.
type EventBridge struct {
	cache    *ParticipantCache
	handlers Handlers
	ctx      context.Context

	id       uintptr
	listener *Handle
	closed   atomic.Bool

	mu       sync.Mutex
	presence map[string]presence
}

// eventTarget is what the listener's userData handle resolves to.
type eventTarget struct{ b *EventBridge }

func (t eventTarget) ParticipantJoined(ref native.Ref) { t.b.onJoin(ref) }
func (t eventTarget) ParticipantLeft(ref native.Ref)   { t.b.onLeave(ref) }
func (t eventTarget) AudioUpdated(enabled bool, ref native.Ref) {
	t.b.onAudioUpdate(enabled, ref)
}

// NewEventBridge creates a native events listener bound to cache. Attach it
// with Session.RegisterParticipantEventsListener, or use Session.Listen.
func NewEventBridge(cache *ParticipantCache, handlers Handlers) *EventBridge {
	b := &EventBridge{
		cache:    cache,
		handlers: handlers,
		ctx:      context.Background(),
		presence: make(map[string]presence),
	}
	b.id = handles.Register(eventTarget{b})
	b.listener = acquire(cache.env.core, kindListener, cache.env.core.NewParticipantEventsListener(b.id))
	return b
}

func (b *EventBridge) onJoin(ref native.Ref) {
	p := b.cache.resolve(ref)
	if p == nil {
		return
	}
	b.observe(p.id, "join")
	if h := b.handlers.OnJoin; h != nil {
		b.invoke("join", p, func(ctx context.Context) { h(ctx, p) })
	}
}

func (b *EventBridge) onLeave(ref native.Ref) {
	p := b.cache.resolve(ref)
	if p == nil {
		return
	}
	b.observe(p.id, "leave")
	if h := b.handlers.OnLeave; h != nil {
		b.invoke("leave", p, func(ctx context.Context) { h(ctx, p) })
	}
	b.cache.Evict(p.id)
}

func (b *EventBridge) onAudioUpdate(enabled bool, ref native.Ref) {
	p := b.cache.resolve(ref)
	if p == nil {
		return
	}
	b.observe(p.id, "audio_update")
	if h := b.handlers.OnAudioUpdate; h != nil {
		b.invoke("audio_update", p, func(ctx context.Context) { h(ctx, enabled, p) })
	}
}

// observe records the event in the participant's presence and warns about
// out-of-order events. A leave forgets the participant, so a later join
// starts again from unseen.
func (b *EventBridge) observe(id, event string) {
	b.mu.Lock()
	prev := b.presence[id]
	switch event {
	case "join":
		b.presence[id] = presenceActive
	case "leave":
		delete(b.presence, id)
	}
	b.mu.Unlock()

	violation := false
	switch event {
	case "join":
		violation = prev == presenceActive
	case "leave", "audio_update":
		violation = prev != presenceActive
	}
	if violation {
		b.cache.env.log.Warn("participant event out of order",
			"participant", id, "event", event, "state", prev.String())
	}
}

func (b *EventBridge) invoke(event string, p *Participant, fn func(ctx context.Context)) {
	tok := b.cache.env.lock.Acquire()
	defer tok.Release()
	defer func() {
		if r := recover(); r != nil {
			b.cache.env.log.Error("participant event handler panicked",
				"participant", p.id, "event", event, "panic", r)
		}
	}()
	fn(hostlock.NewContext(b.ctx, tok))
}

// Cache returns the cache the bridge resolves participants through.
func (b *EventBridge) Cache() *ParticipantCache { return b.cache }

// Close stops routing events and releases the native listener. Events the
// core still delivers are dropped and their references released.
func (b *EventBridge) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	handles.Unregister(b.id)
	b.listener.Close()
}
