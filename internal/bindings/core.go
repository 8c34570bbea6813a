//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"github.com/dyte-io/dyte-go/internal/native"
	"github.com/dyte-io/dyte-go/internal/shim"
)

// Core is the purego-backed native.Core. Use NewCore after a successful Load.
type Core struct{}

var _ native.Core = Core{}

// NewCore returns the loaded core, or ErrNotLoaded.
func NewCore() (Core, error) {
	if !IsLoaded() {
		return Core{}, ErrNotLoaded
	}
	return Core{}, nil
}

func (Core) DisposeStablePointer(ref native.Ref) { shim.Dispose(uintptr(ref)) }

func (Core) NewMeetingBuilder() native.Ref { return native.Ref(shim.MeetingBuilder()) }

func (Core) BuildSession(builder native.Ref) native.Ref {
	return native.Ref(shim.BuildSession(uintptr(builder)))
}

func (Core) NewMeetingInfo(authToken string, enableAudio, enableVideo bool, baseURL string) native.Ref {
	return native.Ref(shim.MeetingInfo(authToken, enableAudio, enableVideo, baseURL))
}

func (Core) NewSuccessCallback(userData uintptr) native.Ref {
	return native.Ref(shim.SuccessCb(userData))
}

func (Core) NewFailureCallback(userData uintptr) native.Ref {
	return native.Ref(shim.FailureCb(userData))
}

func (Core) SessionInit(session, info, onSuccess, onFailure native.Ref) {
	shim.SessionInit(uintptr(session), uintptr(info), uintptr(onSuccess), uintptr(onFailure))
}

func (Core) SessionJoinRoom(session, onSuccess, onFailure native.Ref) {
	shim.SessionJoinRoom(uintptr(session), uintptr(onSuccess), uintptr(onFailure))
}

func (Core) SessionLocalUser(session native.Ref) native.Ref {
	return native.Ref(shim.SessionLocalUser(uintptr(session)))
}

func (Core) EnableLocalAudio(localUser native.Ref) { shim.EnableLocalAudio(uintptr(localUser)) }

func (Core) NewParticipantEventsListener(userData uintptr) native.Ref {
	return native.Ref(shim.EventsListener(userData))
}

func (Core) SessionAddParticipantEventsListener(session, listener native.Ref) {
	shim.AddListener(uintptr(session), uintptr(listener))
}

func (Core) ParticipantID(participant native.Ref) string {
	return shim.ParticipantID(uintptr(participant))
}

func (Core) ParticipantAudioTrack(participant native.Ref) native.Ref {
	return native.Ref(shim.ParticipantAudioTrack(uintptr(participant)))
}

func (Core) AudioTrackRegisterSink(track native.Ref, userData uintptr) {
	shim.RegisterSink(uintptr(track), userData)
}

func (Core) AudioTrackUnregisterSink(track native.Ref) { shim.UnregisterSink(uintptr(track)) }

func (Core) AudioTrackSend(track native.Ref, frame native.AudioFrame) {
	shim.Send(uintptr(track), frame.Data, frame.BitsPerSample, frame.SampleRate, frame.Channels, frame.Frames, frame.CaptureTimestampMs)
}
