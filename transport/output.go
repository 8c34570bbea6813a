package transport

import (
	"context"
	"sync"
	"time"

	dyte "github.com/dyte-io/dyte-go"
)

// The meeting takes the local user's audio as 10 ms chunks of 16-bit mono
// PCM at 16 kHz.
const (
	OutputSampleRate    = 16000
	OutputChannels      = 1
	OutputBitsPerSample = 16
	OutputChunkFrames   = 160
	OutputChunkBytes    = OutputChunkFrames * OutputChannels * OutputBitsPerSample / 8
	OutputChunkInterval = 10 * time.Millisecond
)

// Output paces PCM into the meeting through an AudioSender, normally the
// local user.
type Output struct {
	sender AudioSender

	mu   sync.Mutex
	prev time.Time
}

// NewOutput returns an Output writing to sender.
func NewOutput(sender AudioSender) *Output {
	return &Output{sender: sender}
}

// Write implements io.Writer. It blocks until p has been sent.
func (o *Output) Write(p []byte) (int, error) {
	return o.WriteContext(context.Background(), p)
}

// WriteContext sends p, 16-bit little-endian mono samples at 16 kHz, in
// OutputChunkBytes chunks no closer together than OutputChunkInterval. A
// trailing partial chunk is padded with silence. It returns the number of
// bytes of p sent before ctx was done or the sender failed.
func (o *Output) WriteContext(ctx context.Context, p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	n := 0
	for n < len(p) {
		if wait := OutputChunkInterval - time.Since(o.prev); wait > 0 {
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-timer.C:
			}
		}
		o.prev = time.Now()

		end := min(n+OutputChunkBytes, len(p))
		chunk := p[n:end]
		if len(chunk) < OutputChunkBytes {
			chunk = append(make([]byte, 0, OutputChunkBytes), chunk...)
			chunk = chunk[:OutputChunkBytes]
		}
		if err := o.sender.SendData(chunkFrame(chunk)); err != nil {
			return n, err
		}
		n = end
	}
	return n, nil
}

func chunkFrame(data []byte) dyte.AudioFrame {
	return dyte.AudioFrame{
		Data:               data,
		BitsPerSample:      OutputBitsPerSample,
		SampleRate:         OutputSampleRate,
		Channels:           OutputChannels,
		Frames:             OutputChunkFrames,
		CaptureTimestampMs: -1,
	}
}
