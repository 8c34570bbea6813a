package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dyte "github.com/dyte-io/dyte-go"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

const (
	// MimeTypeL16 is the RTP media type of linear 16-bit PCM (RFC 3551).
	MimeTypeL16 = "audio/L16"

	// DefaultPayloadType is the dynamic payload type used for L16.
	DefaultPayloadType uint8 = 96

	// DefaultMTU bounds the size of a marshalled packet.
	DefaultMTU = 1200

	rtpHeaderSize = 12
)

// ErrUnsupportedFormat is returned for audio that is not 16-bit PCM.
var ErrUnsupportedFormat = errors.New("transport: unsupported audio format")

// L16Codec returns the codec capability of L16 audio at the given rate and
// channel count.
func L16Codec(sampleRate, channels int) webrtc.RTPCodecCapability {
	return webrtc.RTPCodecCapability{
		MimeType:  MimeTypeL16,
		ClockRate: uint32(sampleRate),
		Channels:  uint16(channels),
	}
}

// NewL16Track returns a local WebRTC track that carries L16 packets from an
// RTPPacketizer.
func NewL16Track(id, streamID string, sampleRate, channels int) (*webrtc.TrackLocalStaticRTP, error) {
	track, err := webrtc.NewTrackLocalStaticRTP(L16Codec(sampleRate, channels), id, streamID)
	if err != nil {
		return nil, fmt.Errorf("NewTrackLocalStaticRTP: %w", err)
	}
	return track, nil
}

// RTPWriter accepts RTP packets. *webrtc.TrackLocalStaticRTP implements it.
type RTPWriter interface {
	WriteRTP(p *rtp.Packet) error
}

// RTPPacketizer splits captured audio into L16 RTP packets: network byte
// order samples, timestamps in samples at the frame's sample rate.
type RTPPacketizer struct {
	mu          sync.Mutex
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer
	timestamp   uint32
	started     bool
}

// PacketizerOption configures an RTPPacketizer.
type PacketizerOption func(*RTPPacketizer)

// WithSequencer sets the sequence number source. Defaults to a random start.
func WithSequencer(s rtp.Sequencer) PacketizerOption {
	return func(p *RTPPacketizer) { p.sequencer = s }
}

// WithTimestamp sets the timestamp of the first packet.
func WithTimestamp(ts uint32) PacketizerOption {
	return func(p *RTPPacketizer) { p.timestamp = ts }
}

// NewRTPPacketizer creates a packetizer. mtu <= 0 selects DefaultMTU.
func NewRTPPacketizer(ssrc uint32, pt uint8, mtu int, opts ...PacketizerOption) *RTPPacketizer {
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	p := &RTPPacketizer{
		ssrc:        ssrc,
		payloadType: pt,
		mtu:         mtu,
		sequencer:   rtp.NewRandomSequencer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SSRC returns the packetizer's synchronization source.
func (p *RTPPacketizer) SSRC() uint32 { return p.ssrc }

// Packetize converts one frame of little-endian 16-bit PCM into packets.
// Each packet carries whole sample frames; the first packet the packetizer
// ever produces has the marker bit set.
func (p *RTPPacketizer) Packetize(frame dyte.AudioFrame) ([]*rtp.Packet, error) {
	if frame.BitsPerSample != 16 || frame.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d-bit, %d channels", ErrUnsupportedFormat, frame.BitsPerSample, frame.Channels)
	}
	n := frame.ByteLen()
	if n == 0 {
		return nil, nil
	}
	if len(frame.Data) < n {
		return nil, fmt.Errorf("%w: have %d bytes, format needs %d", dyte.ErrShortBuffer, len(frame.Data), n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sampleFrame := frame.Channels * 2
	perPacket := (p.mtu - rtpHeaderSize) / sampleFrame * sampleFrame
	if perPacket <= 0 {
		return nil, fmt.Errorf("transport: mtu %d too small for %d channels", p.mtu, frame.Channels)
	}

	var packets []*rtp.Packet
	for off := 0; off < n; off += perPacket {
		end := min(off+perPacket, n)
		payload := make([]byte, end-off)
		for i := 0; i+1 < len(payload); i += 2 {
			payload[i] = frame.Data[off+i+1]
			payload[i+1] = frame.Data[off+i]
		}

		packets = append(packets, &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         !p.started,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      p.timestamp,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		})
		p.started = true
		p.timestamp += uint32(len(payload) / sampleFrame)
	}
	return packets, nil
}

// Forward packetizes every frame from frames and writes it to w until
// frames is closed or ctx is done. Frames from participants other than id
// are skipped; an empty id forwards everything.
func Forward(ctx context.Context, frames <-chan InputFrame, id string, pk *RTPPacketizer, w RTPWriter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if id != "" && f.ParticipantID != id {
				continue
			}
			packets, err := pk.Packetize(f.AudioFrame)
			if err != nil {
				return err
			}
			for _, pkt := range packets {
				if err := w.WriteRTP(pkt); err != nil {
					return fmt.Errorf("write rtp: %w", err)
				}
			}
		}
	}
}
