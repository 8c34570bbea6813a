package transport

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	dyte "github.com/dyte-io/dyte-go"
)

// DefaultInputBuffer is the number of frames Input queues before it starts
// dropping.
const DefaultInputBuffer = 256

// InputFrame is one audio buffer received from a remote participant.
type InputFrame struct {
	ParticipantID string
	Received      time.Time
	dyte.AudioFrame
}

// Input collects remote participants' audio into a single channel.
//
// Sinks run on the native audio thread, so a full buffer drops the frame
// instead of blocking the thread.
type Input struct {
	log     *slog.Logger
	frames  chan InputFrame
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewInput returns an Input that buffers up to size frames (DefaultInputBuffer
// when size <= 0).
func NewInput(size int, log *slog.Logger) *Input {
	if size <= 0 {
		size = DefaultInputBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Input{log: log, frames: make(chan InputFrame, size)}
}

// Frames returns the received audio. The channel is closed by Close.
func (in *Input) Frames() <-chan InputFrame { return in.frames }

// Dropped returns the number of frames discarded because the buffer was full.
func (in *Input) Dropped() uint64 { return in.dropped.Load() }

// StartListening registers an audio sink on p that feeds Frames. A
// participant that already has a sink is left alone.
func (in *Input) StartListening(ctx context.Context, p Listener) error {
	if p.HasDataCallback() {
		in.log.Debug("participant already has an audio sink", "participant", p.ID())
		return nil
	}
	in.log.Debug("start listening", "participant", p.ID())

	id := p.ID()
	return p.RegisterDataCallback(ctx, func(_ context.Context, frame dyte.AudioFrame) {
		in.push(InputFrame{ParticipantID: id, Received: time.Now(), AudioFrame: frame})
	})
}

// StopListening removes p's audio sink.
func (in *Input) StopListening(ctx context.Context, p Listener) error {
	in.log.Debug("stop listening", "participant", p.ID())
	return p.UnregisterDataCallback(ctx)
}

func (in *Input) push(f InputFrame) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.closed {
		return
	}
	select {
	case in.frames <- f:
	default:
		if n := in.dropped.Add(1); n == 1 || n%100 == 0 {
			in.log.Warn("input buffer full, dropping audio", "participant", f.ParticipantID, "dropped", n)
		}
	}
}

// Close closes Frames. Audio arriving afterwards is discarded.
func (in *Input) Close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	in.closed = true
	close(in.frames)
}
