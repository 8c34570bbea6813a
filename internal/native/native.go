// Package native describes the call surface of the Dyte mobile core.
//
// The core is a Kotlin/Native library: every object it hands out is a
// "stable pointer" (Ref) that stays valid until DisposeStablePointer is called
// on it. Core is the Go-facing view of that surface; internal/bindings
// implements it over purego and internal/native/nativetest implements it in
// memory for tests.
//
// Native code calls back into Go through Callbacks. Every callback carries
// the userData value that Go supplied when the callback object (completion
// callback, events listener, audio sink) was created.
package native

// Ref is an opaque stable pointer owned by the native core. Zero means null.
type Ref uintptr

// IsNull reports whether r is the null reference.
func (r Ref) IsNull() bool { return r == 0 }

// AudioFrame is one buffer of interleaved PCM delivered by, or sent to, a
// native audio track.
type AudioFrame struct {
	Data               []byte
	BitsPerSample      int
	SampleRate         int
	Channels           int
	Frames             int
	CaptureTimestampMs int64
}

// BytesPerSample returns the sample width in bytes. Widths below 8 bits round
// up to one byte.
func (f AudioFrame) BytesPerSample() int {
	if f.BitsPerSample <= 0 {
		return 0
	}
	return (f.BitsPerSample + 7) / 8
}

// ByteLen returns the payload size described by the frame's format fields:
// channels * frames * bytesPerSample.
func (f AudioFrame) ByteLen() int {
	if f.Channels <= 0 || f.Frames <= 0 {
		return 0
	}
	return f.Channels * f.Frames * f.BytesPerSample()
}

// Core is the native call surface.
//
// Implementations must be safe for concurrent use. Calls returning a Ref
// transfer ownership of that Ref to the caller, which must dispose it exactly
// once.
type Core interface {
	DisposeStablePointer(ref Ref)

	NewMeetingBuilder() Ref
	BuildSession(builder Ref) Ref
	NewMeetingInfo(authToken string, enableAudio, enableVideo bool, baseURL string) Ref

	// NewSuccessCallback and NewFailureCallback create completion callback
	// objects that invoke Callbacks.Complete(userData, ok) when fired.
	NewSuccessCallback(userData uintptr) Ref
	NewFailureCallback(userData uintptr) Ref

	SessionInit(session, info, onSuccess, onFailure Ref)
	SessionJoinRoom(session, onSuccess, onFailure Ref)
	SessionLocalUser(session Ref) Ref
	EnableLocalAudio(localUser Ref)

	// NewParticipantEventsListener creates a listener object whose join,
	// leave and audio-update events are delivered to Callbacks with userData.
	NewParticipantEventsListener(userData uintptr) Ref
	SessionAddParticipantEventsListener(session, listener Ref)

	ParticipantID(participant Ref) string
	// ParticipantAudioTrack returns the participant's audio track or a null
	// Ref when the participant has none.
	ParticipantAudioTrack(participant Ref) Ref

	// AudioTrackRegisterSink installs an audio sink that delivers to
	// Callbacks.AudioData(userData, ...).
	AudioTrackRegisterSink(track Ref, userData uintptr)
	// AudioTrackUnregisterSink removes the sink. It may block until an
	// in-flight AudioData callback for that track has returned.
	AudioTrackUnregisterSink(track Ref)
	AudioTrackSend(track Ref, frame AudioFrame)
}

// Callbacks receives native callback invocations. Calls arrive on native
// threads, including the real-time audio thread.
//
// Participant events transfer ownership of the participant Ref. The event
// methods report whether a receiver took it; when they return false the
// caller disposes the Ref.
type Callbacks interface {
	Complete(userData uintptr, ok bool)
	AudioData(userData uintptr, frame AudioFrame)
	ParticipantJoined(userData uintptr, participant Ref) bool
	ParticipantLeft(userData uintptr, participant Ref) bool
	AudioUpdated(userData uintptr, enabled bool, participant Ref) bool
}
