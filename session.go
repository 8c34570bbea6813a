package dyte

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MeetingInfo holds the parameters of a meeting to initialize a session with.
type MeetingInfo struct {
	handle *Handle

	AuthToken   string
	EnableAudio bool
	EnableVideo bool
	BaseURL     string
}

// Close releases the native meeting info. Later calls are no-ops.
func (m *MeetingInfo) Close() { m.handle.Close() }

// LogValue implements slog.LogValuer. The auth token is never logged.
func (m *MeetingInfo) LogValue() slog.Value {
	return slog.GroupValue(
		redacted("auth_token"),
		slog.Bool("audio", m.EnableAudio),
		slog.Bool("video", m.EnableVideo),
		slog.String("base_url", m.BaseURL),
	)
}

// Session is one mobile-core meeting client.
type Session struct {
	id     string
	env    *bridgeEnv
	tracer trace.Tracer

	handle *Handle
	cache  *ParticipantCache

	mu     sync.Mutex
	bridge *EventBridge
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a meeting client. Unless a core is injected with
// WithCore, the native libraries are loaded first (see Init).
func NewSession(opts ...Option) (*Session, error) {
	o := buildOptions(opts)

	if o.core == nil && o.config == nil {
		c, err := ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		o.config = &c
	}
	if o.config != nil && !o.policySet {
		o.policy = o.config.SinkPolicy
	}
	if !o.policy.Valid() {
		return nil, ErrInvalidSinkPolicy
	}

	if o.core == nil {
		core, err := loadCore(*o.config)
		if err != nil {
			return nil, err
		}
		o.core = core
		if err := setNativeLogLevel(int32(nativeLevelFor(o.config.LogLevel))); err != nil {
			o.logger.Warn("cannot set native log level", "error", err)
		}
	}

	id := uuid.NewString()
	env := &bridgeEnv{
		core:   o.core,
		lock:   o.lock,
		log:    o.logger.With("session", id),
		policy: o.policy,
	}

	// The builder is only needed to build the client.
	builder := acquire(env.core, kindMeetingBuilder, env.core.NewMeetingBuilder())
	handle := acquire(env.core, kindSession, env.core.BuildSession(builder.Ref()))
	builder.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     id,
		env:    env,
		tracer: o.tracer,
		handle: handle,
		cache:  newParticipantCache(env),
		ctx:    ctx,
		cancel: cancel,
	}
	env.log.Debug("session created", "sink_policy", o.policy)
	return s, nil
}

// ID returns the session's id, used to correlate its log lines.
func (s *Session) ID() string { return s.id }

// Cache returns the session's participant cache.
func (s *Session) Cache() *ParticipantCache { return s.cache }

// NewMeetingInfo creates the native meeting info for Init. The caller closes
// it once Init has returned.
func (s *Session) NewMeetingInfo(authToken string, enableAudio, enableVideo bool, baseURL string) *MeetingInfo {
	ref := s.env.core.NewMeetingInfo(authToken, enableAudio, enableVideo, baseURL)
	return &MeetingInfo{
		handle:      acquire(s.env.core, kindMeetingInfo, ref),
		AuthToken:   authToken,
		EnableAudio: enableAudio,
		EnableVideo: enableVideo,
		BaseURL:     baseURL,
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Init initializes the client for the meeting and blocks until the core
// reports the outcome. It returns false on failure, when the session is
// closed, or when ctx is done first.
func (s *Session) Init(ctx context.Context, info *MeetingInfo) bool {
	ctx, span := s.tracer.Start(ctx, "dyte.session.init",
		trace.WithAttributes(attribute.String("dyte.session.id", s.id)))
	defer span.End()

	if s.isClosed() {
		span.SetStatus(codes.Error, ErrClosed.Error())
		return false
	}
	s.env.log.Info("initializing meeting", "meeting", info)

	ok := s.await(ctx, span, func(b *CompletionBridge) {
		s.env.core.SessionInit(s.handle.Ref(), info.handle.Ref(), b.SuccessRef(), b.FailureRef())
	})
	s.env.log.Info("meeting initialized", "ok", ok)
	return ok
}

// JoinRoom joins the meeting room and blocks until the core reports the
// outcome.
func (s *Session) JoinRoom(ctx context.Context) bool {
	ctx, span := s.tracer.Start(ctx, "dyte.session.join_room",
		trace.WithAttributes(attribute.String("dyte.session.id", s.id)))
	defer span.End()

	if s.isClosed() {
		span.SetStatus(codes.Error, ErrClosed.Error())
		return false
	}

	ok := s.await(ctx, span, func(b *CompletionBridge) {
		s.env.core.SessionJoinRoom(s.handle.Ref(), b.SuccessRef(), b.FailureRef())
	})
	s.env.log.Info("room joined", "ok", ok)
	return ok
}

// await starts a native operation with a fresh completion bridge and waits
// for it with the host lock released.
func (s *Session) await(ctx context.Context, span trace.Span, start func(b *CompletionBridge)) bool {
	b := NewCompletionBridge(s.env.core)
	defer b.Close()

	var (
		ok  bool
		err error
	)
	hostlock.Unlocked(ctx, func() {
		start(b)
		ok, err = b.WaitContext(ctx)
	})

	span.SetAttributes(attribute.Bool("dyte.result", ok))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.env.log.Warn("stopped waiting for native operation", "error", err)
	case !ok:
		span.SetStatus(codes.Error, "native operation failed")
	}
	return ok
}

// LocalUser returns the local participant, enabling its audio first. The
// participant is resolved through the session cache. A null local user is a
// contract violation of the core and panics with ErrNullHandle.
func (s *Session) LocalUser() (*Participant, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	h := acquire(s.env.core, kindParticipant, s.env.core.SessionLocalUser(s.handle.Ref()))
	s.env.core.EnableLocalAudio(h.Ref())
	p := s.cache.adopt(h)
	if p == nil {
		return nil, ErrClosed
	}
	return p, nil
}

// RegisterParticipantEventsListener attaches bridge to the session. A
// session takes one bridge; the bridge must be built on s.Cache().
func (s *Session) RegisterParticipantEventsListener(bridge *EventBridge) error {
	if bridge.cache != s.cache {
		return ErrForeignBridge
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrClosed
	case s.bridge != nil:
		return ErrListenerRegistered
	}
	bridge.ctx = s.ctx
	s.bridge = bridge
	s.env.core.SessionAddParticipantEventsListener(s.handle.Ref(), bridge.listener.Ref())
	return nil
}

// Listen creates an event bridge for handlers and attaches it.
func (s *Session) Listen(handlers Handlers) (*EventBridge, error) {
	bridge := NewEventBridge(s.cache, handlers)
	if err := s.RegisterParticipantEventsListener(bridge); err != nil {
		bridge.Close()
		return nil, err
	}
	return bridge, nil
}

// Close detaches the event bridge, closes every cached participant and
// releases the client. The host lock carried by ctx is released while
// audio sinks are removed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	bridge := s.bridge
	s.mu.Unlock()

	s.cancel()
	if bridge != nil {
		bridge.Close()
	}
	err := s.cache.Close(ctx)
	s.handle.Close()

	if err != nil {
		s.env.log.Warn("session closed with errors", "error", err)
		return err
	}
	s.env.log.Debug("session closed")
	return nil
}
