package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"slidevox/internal/services"
)

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// PCM is interleaved signed 16-bit audio.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames.
func (p *PCM) Frames() int {
	if p == nil || p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playback length.
func (p *PCM) Duration() time.Duration {
	if p == nil || p.SampleRate == 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// Bytes returns the samples as little-endian s16le.
func (p *PCM) Bytes() []byte {
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Validate checks that data starts with a RIFF/WAVE header and carries an
// fmt chunk.
func Validate(data []byte) error {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return services.Wrap(services.ErrInvalidSourceAudio, "", "validate wav", "Missing RIFF/WAVE header", nil)
	}
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return services.Wrap(services.ErrInvalidSourceAudio, "", "validate wav", "Invalid WAVE format chunk", nil)
	}
	return nil
}

// Decode parses a complete WAV buffer into 16-bit PCM. Integer PCM at 8, 16,
// 24, and 32 bits and IEEE float at 32 and 64 bits are accepted. Float
// samples outside [-1, 1] are clamped.
func Decode(data []byte) (*PCM, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	dec := gowav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, services.Wrap(services.ErrInvalidSourceAudio, "", "decode wav", "Missing channel count or sample rate", nil)
	}
	var samples []int16
	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return nil, services.Wrap(services.ErrInvalidSourceAudio, "", "decode wav", "Read PCM data", err)
		}
		if samples, err = toInt16(buf); err != nil {
			return nil, services.Wrap(services.ErrInvalidSourceAudio, "", "decode wav", err.Error(), nil)
		}
	case formatFloat:
		var err error
		if samples, err = decodeFloat(dec); err != nil {
			return nil, services.Wrap(services.ErrInvalidSourceAudio, "", "decode wav", "Read float data", err)
		}
	default:
		return nil, services.Wrap(services.ErrInvalidSourceAudio, "", "decode wav", fmt.Sprintf("Unsupported WAVE format tag %d", dec.WavAudioFormat), nil)
	}
	channels := int(dec.NumChans)
	if len(samples)%channels != 0 {
		samples = samples[:len(samples)-len(samples)%channels]
	}
	return &PCM{SampleRate: int(dec.SampleRate), Channels: channels, Samples: samples}, nil
}

// decodeFloat reads the data chunk directly; go-audio decodes float samples
// as integer bit patterns.
func decodeFloat(dec *gowav.Decoder) ([]int16, error) {
	width := int(dec.BitDepth) / 8
	if dec.BitDepth != 32 && dec.BitDepth != 64 {
		return nil, fmt.Errorf("unsupported float bit depth %d", dec.BitDepth)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, err
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dec.PCMChunk == nil {
		return nil, fmt.Errorf("data chunk not found")
	}
	raw, err := io.ReadAll(io.LimitReader(dec.PCMChunk, int64(dec.PCMSize)))
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(raw)/width)
	for i := range out {
		chunk := raw[i*width : (i+1)*width]
		var v float64
		if width == 4 {
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		} else {
			v = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		}
		out[i] = floatToInt16(v)
	}
	return out, nil
}

func floatToInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= 1:
		return math.MaxInt16
	case v <= -1:
		return math.MinInt16
	case v < 0:
		return int16(math.Round(v * 32768))
	default:
		return int16(math.Round(v * 32767))
	}
}

func toInt16(buf *goaudio.IntBuffer) ([]int16, error) {
	if buf == nil {
		return nil, fmt.Errorf("empty PCM buffer")
	}
	out := make([]int16, len(buf.Data))
	switch buf.SourceBitDepth {
	case 8:
		for i, v := range buf.Data {
			out[i] = int16((v - 128) << 8)
		}
	case 16:
		for i, v := range buf.Data {
			out[i] = int16(v)
		}
	case 24:
		for i, v := range buf.Data {
			out[i] = int16(v >> 8)
		}
	case 32:
		for i, v := range buf.Data {
			out[i] = int16(v >> 16)
		}
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", buf.SourceBitDepth)
	}
	return out, nil
}
