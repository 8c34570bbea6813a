package dyte

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dyte-io/dyte-go/hostlock"
)

// AudioSink receives audio delivered for a participant. It runs on the
// native audio thread with the host lock held; ctx carries the lock token.
// frame.Data is owned by the sink.
type AudioSink func(ctx context.Context, frame AudioFrame)

// sinkRegistration is one RegisterDataCallback call. Its address identifies
// the registration.
type sinkRegistration struct {
	sink       AudioSink
	registered time.Time
}

// Participant is a joined meeting participant. There is one *Participant per
// participant id in a session, shared by every event that mentions it.
type Participant struct {
	env    *bridgeEnv
	handle *Handle
	id     string
	closed atomic.Bool

	mu   sync.Mutex
	sink *sinkRegistration

	// refMu is held shared while the participant reference is in use outside
	// installMu, and exclusively by Close to release it.
	refMu sync.RWMutex

	// installMu serializes native sink installs and removals. It is never
	// held by deliveries.
	installMu sync.Mutex
	installed bool
	userData  uintptr
}

// newParticipant takes ownership of h and reads its id.
func newParticipant(env *bridgeEnv, h *Handle) *Participant {
	return &Participant{
		env:    env,
		handle: h,
		id:     env.core.ParticipantID(h.Ref()),
	}
}

// ID returns the participant id.
func (p *Participant) ID() string { return p.id }

func (p *Participant) String() string { return "participant " + p.id }

func (p *Participant) log() *slog.Logger {
	return p.env.log.With("participant", p.id)
}

// HasAudioTrack reports whether the participant currently has an audio track.
func (p *Participant) HasAudioTrack() bool {
	p.refMu.RLock()
	defer p.refMu.RUnlock()
	if p.closed.Load() {
		return false
	}
	track, err := p.track()
	if err != nil {
		return false
	}
	track.Close()
	return true
}

// HasDataCallback reports whether an audio sink is registered.
func (p *Participant) HasDataCallback() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink != nil
}

// track returns a fresh handle to the participant's audio track. The caller
// holds refMu or installMu and has checked closed.
func (p *Participant) track() (*Handle, error) {
	ref := p.env.core.ParticipantAudioTrack(p.handle.Ref())
	if ref.IsNull() {
		return nil, ErrNoAudioTrack
	}
	return acquire(p.env.core, kindAudioTrack, ref), nil
}

// SendData sends one PCM buffer on the participant's audio track. This is
// meaningful for the local user.
func (p *Participant) SendData(frame AudioFrame) error {
	if n := frame.ByteLen(); n == 0 || len(frame.Data) < n {
		return fmt.Errorf("%w: have %d bytes, format needs %d", ErrShortBuffer, len(frame.Data), frame.ByteLen())
	}
	p.refMu.RLock()
	defer p.refMu.RUnlock()
	if p.closed.Load() {
		return ErrClosed
	}
	track, err := p.track()
	if err != nil {
		return err
	}
	defer track.Close()
	p.env.core.AudioTrackSend(track.Ref(), frame)
	return nil
}

// Close removes any audio sink and releases the participant reference.
// The host lock carried by ctx, if any, is released while the native sink
// is removed.
func (p *Participant) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	p.sink = nil
	p.mu.Unlock()

	// After closed is set, install refuses under installMu, so once
	// uninstall returns no native sink can appear again.
	var err error
	hostlock.Unlocked(ctx, func() {
		err = p.uninstall()
		p.refMu.Lock()
		p.handle.Close()
		p.refMu.Unlock()
	})
	return err
}

// discard releases a provisional participant that lost the race to the
// cache. It never had a sink.
func (p *Participant) discard() {
	p.closed.Store(true)
	p.handle.Close()
}
