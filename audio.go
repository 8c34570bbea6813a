package dyte

import (
	"context"
	"errors"
	"time"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/dyte-io/dyte-go/internal/handles"
)

// The native core may block in AudioTrackUnregisterSink until an in-flight
// delivery returns, and a delivery needs the host lock before it can reach
// the Go sink. Every native install and removal therefore runs with the
// caller's host lock released, and no participant mutex is held across a
// native call or a sink invocation.

// audioTarget is what the sink's userData handle resolves to.
type audioTarget struct{ p *Participant }

func (t audioTarget) ReceiveAudio(frame AudioFrame) { t.p.deliver(frame) }

// RegisterDataCallback makes sink the participant's audio sink, replacing
// any previous one, and installs the native sink according to the session's
// SinkPolicy.
//
// It may be called from an event handler or another participant's sink: the
// host lock carried by ctx is released while the native sink is installed.
func (p *Participant) RegisterDataCallback(ctx context.Context, sink AudioSink) error {
	if sink == nil {
		return ErrNilSink
	}
	if p.closed.Load() {
		return ErrClosed
	}

	reg := &sinkRegistration{sink: sink, registered: time.Now()}
	p.mu.Lock()
	prev := p.sink
	p.sink = reg
	p.mu.Unlock()

	var err error
	hostlock.Unlocked(ctx, func() { err = p.install() })
	if err != nil {
		// Roll back unless someone registered in the meantime.
		p.mu.Lock()
		if p.sink == reg {
			p.sink = prev
		}
		p.mu.Unlock()
		return err
	}

	p.log().Debug("audio sink registered", "replaced", prev != nil, "policy", p.env.policy)
	return nil
}

// UnregisterDataCallback removes the audio sink and the native sink. No
// delivery reaches the old sink after it returns. Calling it without a
// registered sink is a no-op.
//
// It must not be called from inside this participant's own sink: the native
// removal waits for that delivery to return.
func (p *Participant) UnregisterDataCallback(ctx context.Context) error {
	p.mu.Lock()
	prev := p.sink
	p.sink = nil
	p.mu.Unlock()

	if p.closed.Load() {
		return nil
	}

	var err error
	hostlock.Unlocked(ctx, func() { err = p.uninstall() })
	if prev != nil {
		p.log().Debug("audio sink unregistered", "held", time.Since(prev.registered))
	}
	return err
}

func (p *Participant) install() error {
	p.installMu.Lock()
	defer p.installMu.Unlock()
	if p.closed.Load() {
		return ErrClosed
	}

	switch p.env.policy {
	case SinkPolicyInstallOnce:
		if p.installed {
			return nil
		}
	case SinkPolicyReinstall:
		if p.installed {
			if err := p.uninstallLocked(); err != nil {
				return err
			}
		}
	case SinkPolicyAlways:
	default:
		return ErrInvalidSinkPolicy
	}

	track, err := p.track()
	if err != nil {
		return err
	}
	defer track.Close()

	if p.userData == 0 {
		p.userData = handles.Register(audioTarget{p})
	}
	p.env.core.AudioTrackRegisterSink(track.Ref(), p.userData)
	p.installed = true
	return nil
}

func (p *Participant) nativeSinkInstalled() bool {
	p.installMu.Lock()
	defer p.installMu.Unlock()
	return p.installed
}

func (p *Participant) uninstall() error {
	p.installMu.Lock()
	defer p.installMu.Unlock()
	return p.uninstallLocked()
}

func (p *Participant) uninstallLocked() error {
	if !p.installed {
		return nil
	}

	track, err := p.track()
	switch {
	case errors.Is(err, ErrNoAudioTrack):
		// The track went away and took the native sink with it.
		p.log().Warn("audio track gone before sink removal")
	case err != nil:
		return err
	default:
		p.env.core.AudioTrackUnregisterSink(track.Ref())
		track.Close()
	}

	handles.Unregister(p.userData)
	p.userData = 0
	p.installed = false
	return nil
}

// deliver runs on the native audio thread.
func (p *Participant) deliver(frame AudioFrame) {
	p.mu.Lock()
	reg := p.sink
	p.mu.Unlock()
	if reg == nil {
		return
	}

	tok := p.env.lock.Acquire()
	defer tok.Release()

	// The sink may have been replaced or removed while waiting for the lock.
	p.mu.Lock()
	current := p.sink == reg
	p.mu.Unlock()
	if !current {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.log().Error("audio sink panicked", "panic", r)
		}
	}()
	reg.sink(hostlock.NewContext(context.Background(), tok), frame)
}
