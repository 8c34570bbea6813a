// Package nativetest provides an in-memory native.Core for tests.
//
// The fake keeps the properties of the real core that the bridge depends on:
// every returned Ref is a fresh stable pointer that must be disposed exactly
// once, participant events hand out a new Ref per callback even for the same
// participant, completions fire from a goroutine other than the caller's, and
// unregistering an audio sink waits for any in-flight delivery on that track.
package nativetest

import (
	"fmt"
	"sync"

	"github.com/dyte-io/dyte-go/internal/native"
)

// Object kinds reported by LiveRefs.
const (
	KindMeetingBuilder = "MeetingBuilder"
	KindSession        = "Session"
	KindMeetingInfo    = "MeetingInfo"
	KindSuccessCb      = "SuccessCallback"
	KindFailureCb      = "FailureCallback"
	KindListener       = "ParticipantEventsListener"
	KindParticipant    = "Participant"
	KindAudioTrack     = "AudioTrack"
)

// Completion selects how SessionInit and SessionJoinRoom complete.
type Completion int

const (
	// CompleteSuccess fires the success callback asynchronously.
	CompleteSuccess Completion = iota
	// CompleteFailure fires the failure callback asynchronously.
	CompleteFailure
	// CompleteManual leaves the operation pending until Complete is called.
	CompleteManual
)

// Operation names accepted by Complete.
const (
	OpInit = "init"
	OpJoin = "join"
)

// MeetingInfo is the data captured by NewMeetingInfo.
type MeetingInfo struct {
	AuthToken   string
	EnableAudio bool
	EnableVideo bool
	BaseURL     string
}

type object struct {
	kind          string
	participantID string
	userData      uintptr
	info          MeetingInfo
}

type participant struct {
	id       string
	hasTrack bool

	// deliverMu is held shared for the duration of a delivery and exclusively
	// while the sink is installed or removed.
	deliverMu sync.RWMutex
	sinkUD    uintptr
	installed bool

	registers   int
	unregisters int
	sent        []native.AudioFrame
}

type pending struct {
	op               string
	success, failure uintptr
}

// Core is a scriptable in-memory native.Core.
type Core struct {
	cb native.Callbacks

	mu           sync.Mutex
	next         native.Ref
	live         map[native.Ref]object
	disposed     map[native.Ref]string
	violations   []string
	participants map[string]*participant
	listeners    []uintptr
	pending      []pending
	calls        map[string]int

	localUserID  string
	localAudioOn bool
	initMode     Completion
	joinMode     Completion
	infos        []MeetingInfo

	wg sync.WaitGroup
}

// Option configures a Core.
type Option func(*Core)

// WithCallbacks routes callbacks to cb instead of native.Dispatch.
func WithCallbacks(cb native.Callbacks) Option {
	return func(c *Core) { c.cb = cb }
}

// WithLocalUser sets the id returned for the session's local participant.
func WithLocalUser(id string) Option {
	return func(c *Core) { c.localUserID = id }
}

// WithInit sets how SessionInit completes.
func WithInit(mode Completion) Option {
	return func(c *Core) { c.initMode = mode }
}

// WithJoin sets how SessionJoinRoom completes.
func WithJoin(mode Completion) Option {
	return func(c *Core) { c.joinMode = mode }
}

// New returns a Core that completes every operation successfully.
func New(opts ...Option) *Core {
	c := &Core{
		cb:           native.Dispatch,
		live:         make(map[native.Ref]object),
		disposed:     make(map[native.Ref]string),
		participants: make(map[string]*participant),
		calls:        make(map[string]int),
		localUserID:  "self",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.participants[c.localUserID] = &participant{id: c.localUserID, hasTrack: true}
	return c
}

var _ native.Core = (*Core)(nil)

func (c *Core) alloc(o object) native.Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocLocked(o)
}

func (c *Core) allocLocked(o object) native.Ref {
	c.next++
	c.live[c.next] = o
	return c.next
}

func (c *Core) lookup(ref native.Ref, op string) (object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	o, ok := c.live[ref]
	if !ok {
		c.violations = append(c.violations, fmt.Sprintf("%s on dead ref %d", op, ref))
	}
	return o, ok
}

func (c *Core) participantFor(ref native.Ref, op string) *participant {
	o, ok := c.lookup(ref, op)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participants[o.participantID]
}

// DisposeStablePointer implements native.Core.
func (c *Core) DisposeStablePointer(ref native.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref.IsNull() {
		c.violations = append(c.violations, "dispose of null ref")
		return
	}
	o, ok := c.live[ref]
	if !ok {
		if kind, was := c.disposed[ref]; was {
			c.violations = append(c.violations, fmt.Sprintf("double dispose of %s ref %d", kind, ref))
		} else {
			c.violations = append(c.violations, fmt.Sprintf("dispose of unknown ref %d", ref))
		}
		return
	}
	delete(c.live, ref)
	c.disposed[ref] = o.kind
}

// NewMeetingBuilder implements native.Core.
func (c *Core) NewMeetingBuilder() native.Ref {
	return c.alloc(object{kind: KindMeetingBuilder})
}

// BuildSession implements native.Core.
func (c *Core) BuildSession(builder native.Ref) native.Ref {
	if _, ok := c.lookup(builder, "BuildSession"); !ok {
		return 0
	}
	return c.alloc(object{kind: KindSession})
}

// NewMeetingInfo implements native.Core.
func (c *Core) NewMeetingInfo(authToken string, enableAudio, enableVideo bool, baseURL string) native.Ref {
	info := MeetingInfo{AuthToken: authToken, EnableAudio: enableAudio, EnableVideo: enableVideo, BaseURL: baseURL}
	return c.alloc(object{kind: KindMeetingInfo, info: info})
}

// NewSuccessCallback implements native.Core.
func (c *Core) NewSuccessCallback(userData uintptr) native.Ref {
	return c.alloc(object{kind: KindSuccessCb, userData: userData})
}

// NewFailureCallback implements native.Core.
func (c *Core) NewFailureCallback(userData uintptr) native.Ref {
	return c.alloc(object{kind: KindFailureCb, userData: userData})
}

// SessionInit implements native.Core.
func (c *Core) SessionInit(session, info, onSuccess, onFailure native.Ref) {
	c.lookup(session, "SessionInit")
	if o, ok := c.lookup(info, "SessionInit.info"); ok {
		c.mu.Lock()
		c.infos = append(c.infos, o.info)
		c.mu.Unlock()
	}
	c.start(OpInit, c.initMode, onSuccess, onFailure)
}

// SessionJoinRoom implements native.Core.
func (c *Core) SessionJoinRoom(session, onSuccess, onFailure native.Ref) {
	c.lookup(session, "SessionJoinRoom")
	c.start(OpJoin, c.joinMode, onSuccess, onFailure)
}

func (c *Core) start(op string, mode Completion, onSuccess, onFailure native.Ref) {
	s, sok := c.lookup(onSuccess, op+".success")
	f, fok := c.lookup(onFailure, op+".failure")
	if !sok || !fok {
		return
	}
	p := pending{op: op, success: s.userData, failure: f.userData}

	switch mode {
	case CompleteManual:
		c.mu.Lock()
		c.pending = append(c.pending, p)
		c.mu.Unlock()
	default:
		ok := mode == CompleteSuccess
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.fire(p, ok)
		}()
	}
}

func (c *Core) fire(p pending, ok bool) {
	if ok {
		c.cb.Complete(p.success, true)
	} else {
		c.cb.Complete(p.failure, false)
	}
}

// Pending returns the number of operations waiting for Complete.
func (c *Core) Pending(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.pending {
		if p.op == op {
			n++
		}
	}
	return n
}

// Complete fires the oldest pending operation named op. It reports false when
// nothing is pending.
func (c *Core) Complete(op string, ok bool) bool {
	c.mu.Lock()
	idx := -1
	for i, p := range c.pending {
		if p.op == op {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	p := c.pending[idx]
	c.pending = append(c.pending[:idx], c.pending[idx+1:]...)
	c.mu.Unlock()

	c.fire(p, ok)
	return true
}

// FireBoth invokes both the success and the failure callback of the oldest
// pending op, in that order. It simulates a core that breaks the
// single-completion contract.
func (c *Core) FireBoth(op string) {
	c.mu.Lock()
	var p pending
	found := false
	for i, q := range c.pending {
		if q.op == op {
			p = q
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.cb.Complete(p.success, true)
	c.cb.Complete(p.failure, false)
}

// SessionLocalUser implements native.Core.
func (c *Core) SessionLocalUser(session native.Ref) native.Ref {
	if _, ok := c.lookup(session, "SessionLocalUser"); !ok {
		return 0
	}
	return c.alloc(object{kind: KindParticipant, participantID: c.localUserID})
}

// EnableLocalAudio implements native.Core.
func (c *Core) EnableLocalAudio(localUser native.Ref) {
	if _, ok := c.lookup(localUser, "EnableLocalAudio"); ok {
		c.mu.Lock()
		c.localAudioOn = true
		c.mu.Unlock()
	}
}

// NewParticipantEventsListener implements native.Core.
func (c *Core) NewParticipantEventsListener(userData uintptr) native.Ref {
	return c.alloc(object{kind: KindListener, userData: userData})
}

// SessionAddParticipantEventsListener implements native.Core.
func (c *Core) SessionAddParticipantEventsListener(session, listener native.Ref) {
	c.lookup(session, "SessionAddParticipantEventsListener")
	o, ok := c.lookup(listener, "SessionAddParticipantEventsListener.listener")
	if !ok {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, o.userData)
	c.mu.Unlock()
}

// ParticipantID implements native.Core.
func (c *Core) ParticipantID(ref native.Ref) string {
	o, ok := c.lookup(ref, "ParticipantID")
	if !ok {
		return ""
	}
	return o.participantID
}

// ParticipantAudioTrack implements native.Core.
func (c *Core) ParticipantAudioTrack(ref native.Ref) native.Ref {
	p := c.participantFor(ref, "ParticipantAudioTrack")
	if p == nil || !p.hasTrack {
		return 0
	}
	return c.alloc(object{kind: KindAudioTrack, participantID: p.id})
}

// AudioTrackRegisterSink implements native.Core.
func (c *Core) AudioTrackRegisterSink(track native.Ref, userData uintptr) {
	p := c.participantFor(track, "AudioTrackRegisterSink")
	if p == nil {
		return
	}
	p.deliverMu.Lock()
	p.sinkUD = userData
	p.installed = true
	p.registers++
	p.deliverMu.Unlock()
}

// AudioTrackUnregisterSink implements native.Core. It waits for in-flight
// deliveries on the track to return.
func (c *Core) AudioTrackUnregisterSink(track native.Ref) {
	p := c.participantFor(track, "AudioTrackUnregisterSink")
	if p == nil {
		return
	}
	p.deliverMu.Lock()
	p.sinkUD = 0
	p.installed = false
	p.unregisters++
	p.deliverMu.Unlock()
}

// AudioTrackSend implements native.Core.
func (c *Core) AudioTrackSend(track native.Ref, frame native.AudioFrame) {
	p := c.participantFor(track, "AudioTrackSend")
	if p == nil {
		return
	}
	frame.Data = append([]byte(nil), frame.Data...)
	c.mu.Lock()
	p.sent = append(p.sent, frame)
	c.mu.Unlock()
}

// AddParticipant makes a remote participant known to the core. Participants
// referenced by Join are added automatically with an audio track.
func (c *Core) AddParticipant(id string, hasTrack bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.participants[id]; ok {
		p.hasTrack = hasTrack
		return
	}
	c.participants[id] = &participant{id: id, hasTrack: hasTrack}
}

func (c *Core) ensureParticipant(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.participants[id]; !ok {
		c.participants[id] = &participant{id: id, hasTrack: true}
	}
}

// NewParticipantRef returns a fresh Ref for participant id, as the core does
// for every callback that mentions a participant. The caller owns the Ref.
func (c *Core) NewParticipantRef(id string) native.Ref {
	c.ensureParticipant(id)
	return c.alloc(object{kind: KindParticipant, participantID: id})
}

func (c *Core) eachListener(id string, deliver func(ud uintptr, ref native.Ref) bool) {
	c.mu.Lock()
	listeners := append([]uintptr(nil), c.listeners...)
	c.mu.Unlock()

	for _, ud := range listeners {
		ref := c.NewParticipantRef(id)
		if !deliver(ud, ref) {
			c.DisposeStablePointer(ref)
		}
	}
}

// Join fires a join event for id on every registered listener.
func (c *Core) Join(id string) {
	c.eachListener(id, func(ud uintptr, ref native.Ref) bool {
		return c.cb.ParticipantJoined(ud, ref)
	})
}

// Leave fires a leave event for id on every registered listener.
func (c *Core) Leave(id string) {
	c.eachListener(id, func(ud uintptr, ref native.Ref) bool {
		return c.cb.ParticipantLeft(ud, ref)
	})
}

// AudioUpdate fires an audio-update event for id on every registered listener.
func (c *Core) AudioUpdate(id string, enabled bool) {
	c.eachListener(id, func(ud uintptr, ref native.Ref) bool {
		return c.cb.AudioUpdated(ud, enabled, ref)
	})
}

// Deliver pushes frame to the sink installed on id's track, as the audio
// thread would. It reports whether a sink was installed.
func (c *Core) Deliver(id string, frame native.AudioFrame) bool {
	c.mu.Lock()
	p := c.participants[id]
	c.mu.Unlock()
	if p == nil {
		return false
	}

	p.deliverMu.RLock()
	defer p.deliverMu.RUnlock()
	if !p.installed {
		return false
	}
	c.cb.AudioData(p.sinkUD, frame)
	return true
}

// Wait blocks until asynchronous completions started by the core have fired.
func (c *Core) Wait() {
	c.wg.Wait()
}

// LiveRefs returns the number of undisposed refs of the given kinds, or of
// all kinds when none are given.
func (c *Core) LiveRefs(kinds ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(kinds) == 0 {
		return len(c.live)
	}
	n := 0
	for _, o := range c.live {
		for _, k := range kinds {
			if o.kind == k {
				n++
				break
			}
		}
	}
	return n
}

// IsLive reports whether ref has been handed out and not yet disposed.
func (c *Core) IsLive(ref native.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.live[ref]
	return ok
}

// Violations returns contract violations observed so far: double disposal,
// disposal of unknown refs and calls on dead refs.
func (c *Core) Violations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.violations...)
}

// Calls returns how many times the named Core method was invoked.
func (c *Core) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// SinkInstalled reports whether id's track has an audio sink installed.
func (c *Core) SinkInstalled(id string) bool {
	c.mu.Lock()
	p := c.participants[id]
	c.mu.Unlock()
	if p == nil {
		return false
	}
	p.deliverMu.RLock()
	defer p.deliverMu.RUnlock()
	return p.installed
}

// SinkRegistrations returns the number of native sink installs and removals
// issued for id.
func (c *Core) SinkRegistrations(id string) (registers, unregisters int) {
	c.mu.Lock()
	p := c.participants[id]
	c.mu.Unlock()
	if p == nil {
		return 0, 0
	}
	p.deliverMu.RLock()
	defer p.deliverMu.RUnlock()
	return p.registers, p.unregisters
}

// Sent returns the frames sent on id's track.
func (c *Core) Sent(id string) []native.AudioFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.participants[id]
	if p == nil {
		return nil
	}
	return append([]native.AudioFrame(nil), p.sent...)
}

// LocalAudioEnabled reports whether EnableLocalAudio was called.
func (c *Core) LocalAudioEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localAudioOn
}

// MeetingInfos returns the meeting info passed to every SessionInit call.
func (c *Core) MeetingInfos() []MeetingInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MeetingInfo(nil), c.infos...)
}

// Listeners returns the number of listeners attached to sessions.
func (c *Core) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}
