//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"sync"
	"unsafe"

	"github.com/dyte-io/dyte-go/internal/native"
	"github.com/dyte-io/dyte-go/internal/shim"
	"github.com/ebitengine/purego"
)

// purego can only create a limited number of callbacks per process, so the
// trampolines are created once and routed through userData.
var (
	callbacksOnce sync.Once

	logCallbackMu sync.Mutex
	logCallback   func(level int32, msg string)
	logCBHandle   uintptr
)

func installCallbacks() {
	callbacksOnce.Do(func() {
		shim.SetCallbacks(
			purego.NewCallback(completeTrampoline),
			purego.NewCallback(audioTrampoline),
			purego.NewCallback(joinedTrampoline),
			purego.NewCallback(leftTrampoline),
			purego.NewCallback(audioUpdatedTrampoline),
		)
	})
}

// completeTrampoline: void (*)(uintptr_t user_data, int32_t ok)
func completeTrampoline(_ purego.CDecl, userData uintptr, ok int32) {
	native.Dispatch.Complete(userData, ok != 0)
}

// audioTrampoline runs on the WebRTC audio thread. The buffer is only valid
// for the duration of the call, so it is copied before dispatch.
//
// void (*)(uintptr_t, const char *, int32_t, int32_t, size_t, size_t, int64_t)
func audioTrampoline(_ purego.CDecl, userData uintptr, data *byte, bitsPerSample, sampleRate int32, channels, frames uintptr, captureTsMs int64) {
	frame := native.AudioFrame{
		BitsPerSample:      int(bitsPerSample),
		SampleRate:         int(sampleRate),
		Channels:           int(channels),
		Frames:             int(frames),
		CaptureTimestampMs: captureTsMs,
	}
	if n := frame.ByteLen(); n > 0 && data != nil {
		frame.Data = append([]byte(nil), unsafe.Slice(data, n)...)
	}
	native.Dispatch.AudioData(userData, frame)
}

// joinedTrampoline: int32_t (*)(uintptr_t user_data, void *participant)
func joinedTrampoline(_ purego.CDecl, userData, participant uintptr) int32 {
	return taken(native.Dispatch.ParticipantJoined(userData, native.Ref(participant)))
}

func leftTrampoline(_ purego.CDecl, userData, participant uintptr) int32 {
	return taken(native.Dispatch.ParticipantLeft(userData, native.Ref(participant)))
}

// audioUpdatedTrampoline: int32_t (*)(uintptr_t, int32_t enabled, void *participant)
func audioUpdatedTrampoline(_ purego.CDecl, userData uintptr, enabled int32, participant uintptr) int32 {
	return taken(native.Dispatch.AudioUpdated(userData, enabled != 0, native.Ref(participant)))
}

// taken maps a dispatch result to the shim's ownership flag. On 0 the shim
// disposes the participant itself.
func taken(ok bool) int32 {
	if ok {
		return 1
	}
	return 0
}

// SetLogCallback forwards shim diagnostics to cb. Pass nil to restore the
// shim's stderr output.
func SetLogCallback(cb func(level int32, msg string)) error {
	if !IsLoaded() {
		return ErrNotLoaded
	}

	logCallbackMu.Lock()
	defer logCallbackMu.Unlock()

	if cb == nil {
		logCallback = nil
		return shim.SetLogCallback(0)
	}

	logCallback = cb
	if logCBHandle == 0 {
		logCBHandle = purego.NewCallback(logCallbackTrampoline)
	}
	return shim.SetLogCallback(logCBHandle)
}

// SetLogLevel sets the most verbose level the shim reports.
func SetLogLevel(level int32) error {
	if !IsLoaded() {
		return ErrNotLoaded
	}
	return shim.SetLogLevel(level)
}

// logCallbackTrampoline: void (*)(int32_t level, const char *msg)
func logCallbackTrampoline(_ purego.CDecl, level int32, msg *byte) {
	logCallbackMu.Lock()
	cb := logCallback
	logCallbackMu.Unlock()

	if cb == nil {
		return
	}
	cb(level, shim.GoString(msg))
}
