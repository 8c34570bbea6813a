package native

import "github.com/dyte-io/dyte-go/internal/handles"

// Completer is registered as the userData target of completion callbacks.
type Completer interface {
	Complete(ok bool)
}

// AudioReceiver is registered as the userData target of audio sinks.
type AudioReceiver interface {
	ReceiveAudio(frame AudioFrame)
}

// EventReceiver is registered as the userData target of participant events
// listeners.
type EventReceiver interface {
	ParticipantJoined(participant Ref)
	ParticipantLeft(participant Ref)
	AudioUpdated(enabled bool, participant Ref)
}

// Dispatch routes native callbacks to the objects registered in
// internal/handles. Callbacks whose userData is unknown, or registered with a
// type that cannot receive them, are dropped: a late callback racing a
// teardown is expected. Dropped participant events report false so that the
// caller can dispose the participant Ref.
var Dispatch Callbacks = dispatcher{}

type dispatcher struct{}

func (dispatcher) Complete(userData uintptr, ok bool) {
	if c, found := handles.LookupAs[Completer](userData); found {
		c.Complete(ok)
	}
}

func (dispatcher) AudioData(userData uintptr, frame AudioFrame) {
	if r, found := handles.LookupAs[AudioReceiver](userData); found {
		r.ReceiveAudio(frame)
	}
}

func (dispatcher) ParticipantJoined(userData uintptr, participant Ref) bool {
	r, found := handles.LookupAs[EventReceiver](userData)
	if !found {
		return false
	}
	r.ParticipantJoined(participant)
	return true
}

func (dispatcher) ParticipantLeft(userData uintptr, participant Ref) bool {
	r, found := handles.LookupAs[EventReceiver](userData)
	if !found {
		return false
	}
	r.ParticipantLeft(participant)
	return true
}

func (dispatcher) AudioUpdated(userData uintptr, enabled bool, participant Ref) bool {
	r, found := handles.LookupAs[EventReceiver](userData)
	if !found {
		return false
	}
	r.AudioUpdated(enabled, participant)
	return true
}
