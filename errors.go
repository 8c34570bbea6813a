package dyte

import "errors"

// Common errors
var (
	// ErrNotLoaded indicates the native libraries are not loaded.
	ErrNotLoaded = errors.New("dyte: mobilecore library not loaded")

	// ErrLibraryNotFound indicates libmobilecore or dyteshim could not be found.
	ErrLibraryNotFound = errors.New("dyte: mobilecore library not found")

	// ErrNullHandle is the panic value (wrapped) for a null native reference
	// where an object was required.
	ErrNullHandle = errors.New("dyte: null native handle")

	// ErrClosed indicates the resource has been closed.
	ErrClosed = errors.New("dyte: resource is closed")

	// ErrNilSink indicates a nil AudioSink was registered.
	ErrNilSink = errors.New("dyte: nil audio sink")

	// ErrNoAudioTrack indicates the participant has no audio track.
	ErrNoAudioTrack = errors.New("dyte: participant has no audio track")

	// ErrShortBuffer indicates an audio frame's data is shorter than its
	// format fields describe.
	ErrShortBuffer = errors.New("dyte: audio frame data shorter than its format")

	// ErrListenerRegistered indicates the session already has an event bridge.
	ErrListenerRegistered = errors.New("dyte: participant events listener already registered")

	// ErrForeignBridge indicates an event bridge built on another session's
	// cache.
	ErrForeignBridge = errors.New("dyte: event bridge belongs to another session")

	// ErrInvalidSinkPolicy indicates an unknown SinkPolicy value.
	ErrInvalidSinkPolicy = errors.New("dyte: invalid audio sink policy")
)
