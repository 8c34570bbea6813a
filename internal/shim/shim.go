//go:build !ios && !android && (amd64 || arm64)

// Package shim provides bindings to the dyteshim helper library.
//
// libmobilecore is a Kotlin/Native library: its API is a nested table of
// function pointers returned by libmobilecore_symbols(), and its objects are
// passed as by-value kref structs. purego cannot call either shape, so
// dyteshim re-exports each call as a flat C function over the pinned
// pointer. Unlike the core itself the shim is REQUIRED: nothing in dyte-go
// can reach the core without it.
//
// To build the shim for your platform:
//
//	cd shim && make MOBILECORE_DIR=/path/to/releaseShared
package shim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/dyte-io/dyte-go/internal/platform"
	"github.com/ebitengine/purego"
)

// ErrShimNotLoaded is returned when shim functions are called but the shim is not available.
var ErrShimNotLoaded = errors.New("dyte: shim library not loaded")

// ErrShimNotFound is returned when the shim library cannot be found.
var ErrShimNotFound = errors.New("dyte: shim library not found")

// LibraryName is the base name of the shim library.
const LibraryName = "dyteshim"

var (
	libShim  uintptr
	loaded   bool
	loadErr  error
	loadMu   sync.Mutex
	shimPath string

	shimInit           func() int32
	shimSetCallbacks   func(complete, audio, joined, left, audioUpdated uintptr)
	shimSetLogCallback func(cb uintptr)
	shimSetLogLevel    func(level int32)

	shimDispose    func(ref uintptr)
	shimFreeString func(s unsafe.Pointer)

	shimMeetingBuilder func() uintptr
	shimBuildSession   func(builder uintptr) uintptr
	shimMeetingInfo    func(authToken string, enableAudio, enableVideo int32, baseURL string) uintptr

	shimSuccessCb func(userData uintptr) uintptr
	shimFailureCb func(userData uintptr) uintptr

	shimSessionInit      func(session, info, onSuccess, onFailure uintptr)
	shimSessionJoinRoom  func(session, onSuccess, onFailure uintptr)
	shimSessionLocalUser func(session uintptr) uintptr
	shimEnableLocalAudio func(localUser uintptr)

	shimEventsListener func(userData uintptr) uintptr
	shimAddListener    func(session, listener uintptr)

	shimParticipantID    func(participant uintptr) unsafe.Pointer
	shimParticipantTrack func(participant uintptr) uintptr

	shimRegisterSink   func(track, userData uintptr)
	shimUnregisterSink func(track uintptr)
	shimSend           func(track uintptr, data *byte, bitsPerSample, sampleRate int32, channels, frames uintptr, captureTsMs int64)
)

// Load finds and opens the shim, registers every binding and runs
// dyteshim_init. dir, when non-empty, is the only directory searched.
// A failed load is remembered; later calls return the same error.
func Load(dir string) error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return nil
	}
	if loadErr != nil {
		return loadErr
	}

	path, err := findShimLibrary(dir)
	if err != nil {
		loadErr = err
		return err
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		if !filepath.IsAbs(path) {
			loadErr = fmt.Errorf("%w: %s (%v). Set DYTE_SHIM_PATH or build the shim: cd shim && make", ErrShimNotFound, path, err)
		} else {
			loadErr = fmt.Errorf("failed to load shim at %s: %w", path, err)
		}
		return loadErr
	}

	if err := registerBindings(lib); err != nil {
		loadErr = fmt.Errorf("shim at %s: %w", path, err)
		return loadErr
	}
	if rc := shimInit(); rc != 0 {
		loadErr = fmt.Errorf("dyteshim_init failed (%d): libmobilecore symbol table unavailable", rc)
		return loadErr
	}

	libShim = lib
	shimPath = path
	loaded = true
	return nil
}

// IsLoaded returns true if the shim library was successfully loaded.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loaded
}

// Lib returns the shim library handle.
func Lib() uintptr {
	loadMu.Lock()
	defer loadMu.Unlock()
	return libShim
}

// Path returns the path where the shim was loaded from, or empty string if not loaded.
func Path() string {
	loadMu.Lock()
	defer loadMu.Unlock()
	return shimPath
}

// LoadError returns the error of a failed Load, or nil.
func LoadError() error {
	loadMu.Lock()
	defer loadMu.Unlock()
	return loadErr
}

// Status returns a human-readable status of the shim library.
func Status() string {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded {
		return fmt.Sprintf("loaded from %s", shimPath)
	}
	if loadErr != nil {
		return fmt.Sprintf("not loaded: %s", loadErr)
	}
	return "not loaded (Load() not called)"
}

// ExpectedLibraryName returns the expected shim library filename for the current platform.
func ExpectedLibraryName() string {
	return platform.LocalLibraryFileName(LibraryName)
}

// BuildInstructions returns platform-specific instructions for building the shim.
func BuildInstructions() string {
	switch runtime.GOOS {
	case "linux":
		return `To build the shim on Linux:
  1. Unpack the libmobilecore release (releaseShared/ with libmobilecore_api.h)
  2. Build the shim:
     cd shim && make MOBILECORE_DIR=/path/to/releaseShared
  3. Install or set path:
     sudo make install
     # OR
     export DYTE_SHIM_PATH=$PWD/shim`
	case "darwin":
		return `To build the shim on macOS:
  1. Unpack the libmobilecore release (releaseShared/ with libmobilecore_api.h)
  2. Build the shim:
     cd shim && make MOBILECORE_DIR=/path/to/releaseShared
  3. Install or set path:
     sudo make install
     # OR
     export DYTE_SHIM_PATH=$PWD/shim`
	default:
		return fmt.Sprintf("Platform %s/%s is not supported for shim building", runtime.GOOS, runtime.GOARCH)
	}
}

func registerBindings(lib uintptr) error {
	var missing []string
	reg := func(fptr any, name string) {
		if _, err := purego.Dlsym(lib, name); err != nil {
			missing = append(missing, name)
			return
		}
		purego.RegisterLibFunc(fptr, lib, name)
	}

	reg(&shimInit, "dyteshim_init")
	reg(&shimSetCallbacks, "dyteshim_set_callbacks")
	reg(&shimSetLogCallback, "dyteshim_set_log_callback")
	reg(&shimSetLogLevel, "dyteshim_set_log_level")

	reg(&shimDispose, "dyteshim_dispose")
	reg(&shimFreeString, "dyteshim_free_string")

	reg(&shimMeetingBuilder, "dyteshim_meeting_builder")
	reg(&shimBuildSession, "dyteshim_build_session")
	reg(&shimMeetingInfo, "dyteshim_meeting_info")

	reg(&shimSuccessCb, "dyteshim_success_cb")
	reg(&shimFailureCb, "dyteshim_failure_cb")

	reg(&shimSessionInit, "dyteshim_session_init")
	reg(&shimSessionJoinRoom, "dyteshim_session_join_room")
	reg(&shimSessionLocalUser, "dyteshim_session_local_user")
	reg(&shimEnableLocalAudio, "dyteshim_enable_local_audio")

	reg(&shimEventsListener, "dyteshim_participant_events_listener")
	reg(&shimAddListener, "dyteshim_session_add_listener")

	reg(&shimParticipantID, "dyteshim_participant_id")
	reg(&shimParticipantTrack, "dyteshim_participant_audio_track")

	reg(&shimRegisterSink, "dyteshim_audio_track_register_sink")
	reg(&shimUnregisterSink, "dyteshim_audio_track_unregister_sink")
	reg(&shimSend, "dyteshim_audio_track_send")

	if len(missing) > 0 {
		return fmt.Errorf("missing symbols: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SetCallbacks installs the Go trampolines. Each argument is a purego
// callback created with purego.NewCallback.
func SetCallbacks(complete, audio, joined, left, audioUpdated uintptr) {
	shimSetCallbacks(complete, audio, joined, left, audioUpdated)
}

// SetLogCallback installs cb as the shim's log sink. Zero restores stderr.
func SetLogCallback(cb uintptr) error {
	if !IsLoaded() {
		return ErrShimNotLoaded
	}
	shimSetLogCallback(cb)
	return nil
}

// SetLogLevel sets the most verbose level the shim reports.
func SetLogLevel(level int32) error {
	if !IsLoaded() {
		return ErrShimNotLoaded
	}
	shimSetLogLevel(level)
	return nil
}

// The functions below assume a successful Load.

func Dispose(ref uintptr) { shimDispose(ref) }

func MeetingBuilder() uintptr { return shimMeetingBuilder() }

func BuildSession(builder uintptr) uintptr { return shimBuildSession(builder) }

func SuccessCb(userData uintptr) uintptr { return shimSuccessCb(userData) }

func FailureCb(userData uintptr) uintptr { return shimFailureCb(userData) }

func SessionLocalUser(session uintptr) uintptr { return shimSessionLocalUser(session) }

func EnableLocalAudio(localUser uintptr) { shimEnableLocalAudio(localUser) }

func EventsListener(userData uintptr) uintptr { return shimEventsListener(userData) }

func AddListener(session, listener uintptr) { shimAddListener(session, listener) }

func ParticipantAudioTrack(participant uintptr) uintptr { return shimParticipantTrack(participant) }

func RegisterSink(track, userData uintptr) { shimRegisterSink(track, userData) }

func UnregisterSink(track uintptr) { shimUnregisterSink(track) }

func MeetingInfo(authToken string, enableAudio, enableVideo bool, baseURL string) uintptr {
	return shimMeetingInfo(authToken, cbool(enableAudio), cbool(enableVideo), baseURL)
}

func SessionInit(session, info, onSuccess, onFailure uintptr) {
	shimSessionInit(session, info, onSuccess, onFailure)
}

func SessionJoinRoom(session, onSuccess, onFailure uintptr) {
	shimSessionJoinRoom(session, onSuccess, onFailure)
}

// ParticipantID returns the participant's id, copying and releasing the
// Kotlin string.
func ParticipantID(participant uintptr) string {
	p := shimParticipantID(participant)
	if p == nil {
		return ""
	}
	defer shimFreeString(p)
	return GoString((*byte)(p))
}

// Send pushes one PCM buffer to track. data must hold the full payload.
func Send(track uintptr, data []byte, bitsPerSample, sampleRate, channels, frames int, captureTsMs int64) {
	var ptr *byte
	if len(data) > 0 {
		ptr = &data[0]
	}
	shimSend(track, ptr, int32(bitsPerSample), int32(sampleRate), uintptr(channels), uintptr(frames), captureTsMs)
	runtime.KeepAlive(data)
}

func cbool(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// GoString copies a NUL-terminated C string.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// findShimLibrary resolves the shim path. When dir is set only that
// directory is considered.
func findShimLibrary(dir string) (string, error) {
	name := ExpectedLibraryName()

	if dir != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: DYTE_SHIM_PATH=%s does not contain %s", ErrShimNotFound, dir, name)
	}

	var extra []string
	if _, file, _, ok := runtime.Caller(0); ok {
		// internal/shim/shim.go -> <module_root>/shim
		moduleRoot := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
		extra = append(extra, filepath.Join(moduleRoot, "shim"))
	}
	if cwd, err := os.Getwd(); err == nil {
		extra = append(extra, cwd)
	}

	candidates := platform.SearchPaths(LibraryName)
	// SearchPaths ends with the bare filename; module-local dirs go before it.
	bare := candidates[len(candidates)-1]
	candidates = candidates[:len(candidates)-1]
	for _, d := range extra {
		candidates = append(candidates, filepath.Join(d, name))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// Let the system loader try the bare name.
	return bare, nil
}
