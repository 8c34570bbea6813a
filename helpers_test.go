package dyte

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/dyte-io/dyte-go/internal/native"
	"github.com/dyte-io/dyte-go/internal/native/nativetest"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var discard = slog.New(slog.DiscardHandler)

func testEnv(core native.Core, policy SinkPolicy) *bridgeEnv {
	return &bridgeEnv{core: core, lock: hostlock.New(), log: discard, policy: policy}
}

// newTestSession returns a session on a fresh fake core. The cleanup closes
// the session and fails the test on any native contract violation.
func newTestSession(t *testing.T, coreOpts []nativetest.Option, opts ...Option) (*Session, *nativetest.Core) {
	t.Helper()
	core := nativetest.New(coreOpts...)
	base := []Option{
		WithCore(core),
		WithHostLock(hostlock.New()),
		WithLogger(discard),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	}
	s, err := NewSession(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close(context.Background()))
		core.Wait()
		require.Empty(t, core.Violations())
	})
	return s, core
}

// pcm returns a 16-bit frame of the given shape filled with b.
func pcm(channels, frames int, b byte) AudioFrame {
	f := AudioFrame{
		BitsPerSample:      16,
		SampleRate:         16000,
		Channels:           channels,
		Frames:             frames,
		CaptureTimestampMs: -1,
	}
	f.Data = bytes.Repeat([]byte{b}, f.ByteLen())
	return f
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// recoverValue runs fn and returns what it panicked with.
func recoverValue(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}
