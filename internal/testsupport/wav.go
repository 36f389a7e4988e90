package testsupport

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
)

// SineWAV returns a 16-bit PCM WAV buffer holding a 440 Hz tone.
func SineWAV(rate, channels int, seconds float64) []byte {
	frames := int(float64(rate) * seconds)
	samples := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(rate)) * 12000)
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = v
		}
	}
	return PCM16WAV(rate, channels, samples)
}

// PCM16WAV wraps interleaved samples in a canonical RIFF/WAVE container.
func PCM16WAV(rate, channels int, samples []int16) []byte {
	return riffWAV(1, rate, channels, 16, samples)
}

// Float32WAV wraps interleaved IEEE float samples (format tag 3).
func Float32WAV(rate, channels int, samples []float32) []byte {
	return riffWAV(3, rate, channels, 32, samples)
}

// Float64WAV wraps interleaved 64-bit IEEE float samples (format tag 3).
func Float64WAV(rate, channels int, samples []float64) []byte {
	return riffWAV(3, rate, channels, 64, samples)
}

func riffWAV(format uint16, rate, channels, bits int, samples any) []byte {
	var data bytes.Buffer
	_ = binary.Write(&data, binary.LittleEndian, samples)
	block := channels * bits / 8

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, format)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*block))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(block))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// WriteWAV writes a short tone to dir/name and returns the full path.
func WriteWAV(t testing.TB, dir, name string, rate, channels int, seconds float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteBytes(t, path, SineWAV(rate, channels, seconds))
	return path
}
