package transport

import (
	"context"
	"log/slog"
	"testing"

	dyte "github.com/dyte-io/dyte-go"
	"github.com/dyte-io/dyte-go/transport/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var discard = slog.New(slog.DiscardHandler)

func pcm16(frames int, b byte) dyte.AudioFrame {
	f := dyte.AudioFrame{BitsPerSample: 16, SampleRate: 16000, Channels: 1, Frames: frames, CaptureTimestampMs: -1}
	f.Data = make([]byte, f.ByteLen())
	for i := range f.Data {
		f.Data[i] = b
	}
	return f
}

func TestStartListeningRegistersSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockListener(ctrl)
	in := NewInput(4, discard)
	ctx := context.Background()

	var sink dyte.AudioSink
	p.EXPECT().ID().Return("p1").AnyTimes()
	p.EXPECT().HasDataCallback().Return(false)
	p.EXPECT().RegisterDataCallback(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s dyte.AudioSink) error {
			sink = s
			return nil
		})

	require.NoError(t, in.StartListening(ctx, p))
	require.NotNil(t, sink)

	sink(ctx, pcm16(160, 3))

	f := <-in.Frames()
	assert.Equal(t, "p1", f.ParticipantID)
	assert.Equal(t, 160, f.Frames)
	assert.Len(t, f.Data, 320)
	assert.False(t, f.Received.IsZero())
}

func TestStartListeningKeepsExistingSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockListener(ctrl)
	in := NewInput(4, discard)

	p.EXPECT().ID().Return("p1").AnyTimes()
	p.EXPECT().HasDataCallback().Return(true)
	p.EXPECT().RegisterDataCallback(gomock.Any(), gomock.Any()).Times(0)

	require.NoError(t, in.StartListening(context.Background(), p))
}

func TestStopListening(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockListener(ctrl)
	in := NewInput(4, discard)
	ctx := context.Background()

	p.EXPECT().ID().Return("p1").AnyTimes()
	p.EXPECT().UnregisterDataCallback(ctx).Return(dyte.ErrClosed)

	assert.ErrorIs(t, in.StopListening(ctx, p), dyte.ErrClosed)
}

func TestInputDropsWhenFull(t *testing.T) {
	in := NewInput(2, discard)

	for range 5 {
		in.push(InputFrame{ParticipantID: "p1"})
	}

	assert.Equal(t, uint64(3), in.Dropped())
	assert.Len(t, in.Frames(), 2)
}

func TestInputClose(t *testing.T) {
	in := NewInput(0, nil)
	in.push(InputFrame{ParticipantID: "p1"})

	in.Close()
	in.Close()
	assert.NotPanics(t, func() { in.push(InputFrame{ParticipantID: "p2"}) })

	var got []string
	for f := range in.Frames() {
		got = append(got, f.ParticipantID)
	}
	assert.Equal(t, []string{"p1"}, got)
	assert.Equal(t, DefaultInputBuffer, cap(in.frames))
}
