// Package dyte bridges Go programs to the Dyte mobile core (libmobilecore)
// without CGO using purego.
//
// The core is a Kotlin/Native library whose objects must be released by hand
// and whose callbacks arrive on native threads, including the real-time audio
// thread. This package owns those lifetimes and threads:
//
//   - every native object is held by a Handle and released exactly once;
//   - success/failure callback pairs become a blocking CompletionBridge;
//   - each logical participant maps to one shared *Participant, however many
//     references the core hands out for it (ParticipantCache);
//   - audio sinks can be installed and removed from any goroutine, event
//     handlers and other participants' sinks included, without deadlocking
//     the core. A sink must not remove itself.
//
// Host-visible callbacks (audio sinks, participant event handlers) run with
// the host lock held; see package hostlock.
//
// Typical use:
//
//	s, err := dyte.NewSession()
//	if err != nil { ... }
//	defer s.Close(ctx)
//
//	info := s.NewMeetingInfo(token, true, false, baseURL)
//	defer info.Close()
//	if !s.Init(ctx, info) || !s.JoinRoom(ctx) { ... }
//
//	s.Listen(dyte.Handlers{
//		OnJoin: func(ctx context.Context, p *dyte.Participant) {
//			p.RegisterDataCallback(ctx, sink)
//		},
//	})
package dyte

import (
	"github.com/dyte-io/dyte-go/internal/native"
)

// Init loads libmobilecore and the dyteshim helper using the configuration
// from the environment. It is called by NewSession when no core is injected,
// but can be called explicitly to check for errors. It is safe to call
// multiple times.
func Init() error {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return err
	}
	_, err = loadCore(cfg)
	return err
}

// IsLoaded returns true if the native libraries have been successfully loaded.
func IsLoaded() bool {
	return coreLoaded()
}

// Re-exported native types. Core and Ref allow injecting an alternative core
// with WithCore.
type (
	// Core is the native call surface of the mobile core.
	Core = native.Core

	// Ref is an opaque native object reference (Kotlin stable pointer).
	Ref = native.Ref

	// AudioFrame is one buffer of interleaved PCM.
	AudioFrame = native.AudioFrame
)
