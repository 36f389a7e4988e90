package transcode

import (
	"fmt"

	"slidevox/internal/media/ffmpeg"
	"slidevox/internal/services"
)

// SelectFormat picks the encoder format for an input rate and channel count.
// An exact match wins; otherwise the entry with the same channel count and
// the smallest rate distance is chosen, the earliest entry winning ties.
func SelectFormat(supported []ffmpeg.Format, rate, channels int) (ffmpeg.Format, error) {
	best := -1
	bestDiff := 0
	for i, f := range supported {
		if f.Channels != channels {
			continue
		}
		diff := f.SampleRate - rate
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			return f, nil
		}
		if best < 0 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best < 0 {
		return ffmpeg.Format{}, services.Wrap(services.ErrUnsupportedChannelLayout, "", "select format", fmt.Sprintf("Encoder has no %d-channel format", channels), nil)
	}
	return supported[best], nil
}
