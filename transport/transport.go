//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=transport.go -destination=mocks/mock_transport.go -package=mocks

// Package transport moves audio between a meeting and a Go program.
//
// Transport joins a meeting, captures the audio of every remote participant
// that has a track into an Input, and plays PCM into the meeting through an
// Output on the local user. RTPPacketizer turns captured audio into L16 RTP
// packets for forwarding.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	dyte "github.com/dyte-io/dyte-go"
	"github.com/samber/lo"
)

var (
	// ErrInitFailed is returned when the core rejects the meeting info.
	ErrInitFailed = errors.New("transport: meeting init failed")

	// ErrJoinFailed is returned when joining the room fails.
	ErrJoinFailed = errors.New("transport: join room failed")
)

// AudioSender sends PCM into the meeting. *dyte.Participant implements it.
type AudioSender interface {
	SendData(frame dyte.AudioFrame) error
}

// Listener is a participant whose audio can be captured. *dyte.Participant
// implements it.
type Listener interface {
	ID() string
	HasAudioTrack() bool
	HasDataCallback() bool
	RegisterDataCallback(ctx context.Context, sink dyte.AudioSink) error
	UnregisterDataCallback(ctx context.Context) error
}

var (
	_ AudioSender = (*dyte.Participant)(nil)
	_ Listener    = (*dyte.Participant)(nil)
)

// Option configures a Transport.
type Option func(*Transport)

// WithHandlers sets handlers that also receive the remote participants'
// events, after the transport has handled them.
func WithHandlers(h dyte.Handlers) Option {
	return func(t *Transport) { t.handlers = h }
}

// WithInputBuffer sets the Input buffer size.
func WithInputBuffer(n int) Option {
	return func(t *Transport) { t.bufferSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// Transport is a meeting audio client over a dyte.Session.
type Transport struct {
	session    *dyte.Session
	handlers   dyte.Handlers
	bufferSize int
	log        *slog.Logger

	self   *dyte.Participant
	input  *Input
	bridge *dyte.EventBridge

	once   sync.Once
	output *Output
}

// Connect initializes s for the meeting, starts routing participant events
// and joins the room. The caller keeps ownership of s and info.
func Connect(ctx context.Context, s *dyte.Session, info *dyte.MeetingInfo, opts ...Option) (*Transport, error) {
	t := &Transport{session: s, log: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("session", s.ID())
	t.input = NewInput(t.bufferSize, t.log)

	if !s.Init(ctx, info) {
		return nil, ErrInitFailed
	}

	self, err := s.LocalUser()
	if err != nil {
		return nil, err
	}
	t.self = self

	t.bridge, err = s.Listen(dyte.Handlers{
		OnJoin:        t.onJoin,
		OnLeave:       t.onLeave,
		OnAudioUpdate: t.onAudioUpdate,
	})
	if err != nil {
		return nil, err
	}

	if !s.JoinRoom(ctx) {
		t.bridge.Close()
		return nil, ErrJoinFailed
	}
	t.log.Info("joined meeting", "self", self.ID())
	return t, nil
}

// Self returns the local participant.
func (t *Transport) Self() *dyte.Participant { return t.self }

// Input returns the captured remote audio.
func (t *Transport) Input() *Input { return t.input }

// Output returns the writer into the meeting, created on first use.
func (t *Transport) Output() *Output {
	t.once.Do(func() { t.output = NewOutput(t.self) })
	return t.output
}

func (t *Transport) isSelf(p Listener) bool {
	return p.ID() == t.self.ID()
}

func (t *Transport) onJoin(ctx context.Context, p *dyte.Participant) {
	if t.isSelf(p) {
		return
	}
	t.join(ctx, p)
	if h := t.handlers.OnJoin; h != nil {
		h(ctx, p)
	}
}

func (t *Transport) onAudioUpdate(ctx context.Context, enabled bool, p *dyte.Participant) {
	if t.isSelf(p) {
		return
	}
	t.audioUpdate(ctx, enabled, p)
	if h := t.handlers.OnAudioUpdate; h != nil {
		h(ctx, enabled, p)
	}
}

func (t *Transport) onLeave(ctx context.Context, p *dyte.Participant) {
	if t.isSelf(p) {
		return
	}
	t.leave(ctx, p)
	if h := t.handlers.OnLeave; h != nil {
		h(ctx, p)
	}
}

func (t *Transport) join(ctx context.Context, p Listener) {
	t.log.Debug("participant joined", "participant", p.ID())
	if !p.HasAudioTrack() {
		return
	}
	t.listen(ctx, p)
}

func (t *Transport) audioUpdate(ctx context.Context, enabled bool, p Listener) {
	if !enabled {
		t.stop(ctx, p)
		return
	}
	if !p.HasAudioTrack() {
		t.log.Debug("no audio track for participant", "participant", p.ID())
		return
	}
	t.listen(ctx, p)
}

func (t *Transport) leave(ctx context.Context, p Listener) {
	t.log.Debug("participant left", "participant", p.ID())
	t.stop(ctx, p)
}

func (t *Transport) listen(ctx context.Context, p Listener) {
	if err := t.input.StartListening(ctx, p); err != nil {
		t.log.Warn("cannot listen to participant", "participant", p.ID(), "error", err)
	}
}

func (t *Transport) stop(ctx context.Context, p Listener) {
	if err := t.input.StopListening(ctx, p); err != nil {
		t.log.Warn("cannot stop listening to participant", "participant", p.ID(), "error", err)
	}
}

// Close stops routing events, removes every audio sink the transport
// installed and closes the Input. The session stays open.
func (t *Transport) Close(ctx context.Context) error {
	t.bridge.Close()

	var errs []error
	remote := lo.Reject(t.session.Cache().Participants(), func(p *dyte.Participant, _ int) bool {
		return p == t.self
	})
	for _, p := range remote {
		if err := p.UnregisterDataCallback(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.input.Close()
	return errors.Join(errs...)
}
