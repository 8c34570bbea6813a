package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	dyte "github.com/dyte-io/dyte-go"
	"github.com/dyte-io/dyte-go/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var _ io.Writer = (*Output)(nil)

func TestOutputChunksAndPaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockAudioSender(ctrl)

	var sent []dyte.AudioFrame
	var at []time.Time
	sender.EXPECT().SendData(gomock.Any()).
		DoAndReturn(func(f dyte.AudioFrame) error {
			sent = append(sent, f)
			at = append(at, time.Now())
			return nil
		}).Times(4)

	pcm := bytes.Repeat([]byte{7}, 3*OutputChunkBytes+100)
	n, err := NewOutput(sender).Write(pcm)
	require.NoError(t, err)
	assert.Equal(t, len(pcm), n)

	require.Len(t, sent, 4)
	for _, f := range sent {
		assert.Equal(t, OutputBitsPerSample, f.BitsPerSample)
		assert.Equal(t, OutputSampleRate, f.SampleRate)
		assert.Equal(t, OutputChannels, f.Channels)
		assert.Equal(t, OutputChunkFrames, f.Frames)
		assert.Equal(t, int64(-1), f.CaptureTimestampMs)
		assert.Len(t, f.Data, OutputChunkBytes)
	}

	// The trailing partial chunk is padded with silence.
	last := sent[3].Data
	assert.Equal(t, bytes.Repeat([]byte{7}, 100), last[:100])
	assert.Equal(t, make([]byte, OutputChunkBytes-100), last[100:])

	for i := 1; i < len(at); i++ {
		assert.GreaterOrEqual(t, at[i].Sub(at[i-1]), OutputChunkInterval-time.Millisecond)
	}
}

func TestOutputStopsOnSenderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockAudioSender(ctrl)
	boom := errors.New("boom")

	gomock.InOrder(
		sender.EXPECT().SendData(gomock.Any()).Return(nil),
		sender.EXPECT().SendData(gomock.Any()).Return(boom),
	)

	n, err := NewOutput(sender).Write(make([]byte, 3*OutputChunkBytes))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OutputChunkBytes, n)
}

func TestOutputContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockAudioSender(ctrl)
	sender.EXPECT().SendData(gomock.Any()).Return(nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The first chunk goes out at once; the second has to wait and sees ctx.
	n, err := NewOutput(sender).WriteContext(ctx, make([]byte, 2*OutputChunkBytes))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutputChunkBytes, n)
}

func TestOutputEmptyWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockAudioSender(ctrl)

	n, err := NewOutput(sender).Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
