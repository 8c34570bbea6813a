package transport

import (
	"context"
	"errors"
	"testing"

	dyte "github.com/dyte-io/dyte-go"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ RTPWriter = (*webrtc.TrackLocalStaticRTP)(nil)

type packetLog struct {
	packets []*rtp.Packet
	err     error
}

func (l *packetLog) WriteRTP(p *rtp.Packet) error {
	if l.err != nil {
		return l.err
	}
	l.packets = append(l.packets, p)
	return nil
}

func TestPacketizeSingle(t *testing.T) {
	pk := NewRTPPacketizer(12345, DefaultPayloadType, 0, WithTimestamp(1000))

	frame := pcm16(4, 0)
	copy(frame.Data, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	packets, err := pk.Packetize(frame)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	h := packets[0].Header
	assert.Equal(t, uint8(2), h.Version)
	assert.Equal(t, uint32(12345), h.SSRC)
	assert.Equal(t, DefaultPayloadType, h.PayloadType)
	assert.Equal(t, uint32(1000), h.Timestamp)
	assert.True(t, h.Marker, "first packet starts a talkspurt")
	// Little-endian samples go out in network byte order.
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03, 0x06, 0x05, 0x08, 0x07}, packets[0].Payload)

	next, err := pk.Packetize(pcm16(4, 0))
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.False(t, next[0].Header.Marker)
	assert.Equal(t, uint32(1004), next[0].Header.Timestamp)
	assert.Equal(t, h.SequenceNumber+1, next[0].Header.SequenceNumber)
}

func TestPacketizeSplitsOnMTU(t *testing.T) {
	// 64 payload bytes: 32 mono samples per packet.
	pk := NewRTPPacketizer(1, DefaultPayloadType, rtpHeaderSize+64, WithSequencer(rtp.NewFixedSequencer(100)))

	packets, err := pk.Packetize(pcm16(OutputChunkFrames, 1))
	require.NoError(t, err)
	require.Len(t, packets, 5)

	first := packets[0].Header
	for i, p := range packets {
		assert.Len(t, p.Payload, 64)
		assert.Equal(t, first.Timestamp+uint32(32*i), p.Header.Timestamp)
		assert.Equal(t, first.SequenceNumber+uint16(i), p.Header.SequenceNumber)

		raw, err := p.Marshal()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(raw), rtpHeaderSize+64)
	}
}

func TestPacketizeStereoKeepsSampleFrames(t *testing.T) {
	// 30 bytes of room only fit 7 stereo sample frames.
	pk := NewRTPPacketizer(1, DefaultPayloadType, rtpHeaderSize+30)
	frame := dyte.AudioFrame{BitsPerSample: 16, SampleRate: 48000, Channels: 2, Frames: 10}
	frame.Data = make([]byte, frame.ByteLen())

	packets, err := pk.Packetize(frame)
	require.NoError(t, err)
	require.Len(t, packets, 2)
	assert.Len(t, packets[0].Payload, 28)
	assert.Len(t, packets[1].Payload, 12)
	assert.Equal(t, packets[0].Header.Timestamp+7, packets[1].Header.Timestamp)
}

func TestPacketizeRejectsBadInput(t *testing.T) {
	pk := NewRTPPacketizer(1, DefaultPayloadType, 0)

	frame := pcm16(10, 0)
	frame.BitsPerSample = 8
	_, err := pk.Packetize(frame)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	short := pcm16(10, 0)
	short.Data = short.Data[:5]
	_, err = pk.Packetize(short)
	assert.ErrorIs(t, err, dyte.ErrShortBuffer)

	packets, err := pk.Packetize(dyte.AudioFrame{BitsPerSample: 16, Channels: 1})
	assert.NoError(t, err)
	assert.Empty(t, packets)
}

func TestL16Track(t *testing.T) {
	codec := L16Codec(16000, 1)
	assert.Equal(t, MimeTypeL16, codec.MimeType)
	assert.Equal(t, uint32(16000), codec.ClockRate)
	assert.Equal(t, uint16(1), codec.Channels)

	track, err := NewL16Track("audio", "dyte", 48000, 2)
	require.NoError(t, err)
	assert.Equal(t, "audio", track.ID())
	assert.Equal(t, "dyte", track.StreamID())
	assert.Equal(t, uint32(48000), track.Codec().ClockRate)
}

func TestForward(t *testing.T) {
	frames := make(chan InputFrame, 4)
	frames <- InputFrame{ParticipantID: "p1", AudioFrame: pcm16(8, 1)}
	frames <- InputFrame{ParticipantID: "p2", AudioFrame: pcm16(8, 2)}
	frames <- InputFrame{ParticipantID: "p1", AudioFrame: pcm16(8, 3)}
	close(frames)

	var w packetLog
	err := Forward(context.Background(), frames, "p1", NewRTPPacketizer(7, DefaultPayloadType, 0), &w)
	require.NoError(t, err)

	require.Len(t, w.packets, 2)
	assert.Equal(t, byte(1), w.packets[0].Payload[0])
	assert.Equal(t, byte(3), w.packets[1].Payload[0])
}

func TestForwardErrors(t *testing.T) {
	frames := make(chan InputFrame, 1)
	frames <- InputFrame{ParticipantID: "p1", AudioFrame: pcm16(8, 1)}

	boom := errors.New("boom")
	err := Forward(context.Background(), frames, "", NewRTPPacketizer(7, DefaultPayloadType, 0), &packetLog{err: boom})
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Forward(ctx, make(chan InputFrame), "", NewRTPPacketizer(7, DefaultPayloadType, 0), &packetLog{})
	assert.ErrorIs(t, err, context.Canceled)
}
