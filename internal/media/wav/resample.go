package wav

import "fmt"

// Resample converts p to the target rate by linear interpolation over each
// channel. The input is returned unchanged when the rates already agree.
func Resample(p *PCM, targetRate int) (*PCM, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("resample: invalid target rate %d", targetRate)
	}
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return nil, fmt.Errorf("resample: invalid source format %d Hz x %d", p.SampleRate, p.Channels)
	}
	if p.SampleRate == targetRate {
		return p, nil
	}

	inFrames := p.Frames()
	outFrames := int(int64(inFrames) * int64(targetRate) / int64(p.SampleRate))
	out := make([]int16, outFrames*p.Channels)
	ratio := float64(p.SampleRate) / float64(targetRate)

	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		next := idx + 1
		if next >= inFrames {
			next = inFrames - 1
		}
		for c := 0; c < p.Channels; c++ {
			a := float64(p.Samples[idx*p.Channels+c])
			b := float64(p.Samples[next*p.Channels+c])
			out[i*p.Channels+c] = clamp16(a + (b-a)*frac)
		}
	}
	return &PCM{SampleRate: targetRate, Channels: p.Channels, Samples: out}, nil
}

func clamp16(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	case v >= 0:
		return int16(v + 0.5)
	default:
		return int16(v - 0.5)
	}
}
