package deps

import (
	"context"
	"fmt"
	"strings"

	"slidevox/internal/media/ffmpeg"
)

// EncoderInspector reports the formats an encoder accepts.
type EncoderInspector interface {
	SupportedFormats(ctx context.Context, encoder string) ([]ffmpeg.Format, error)
}

// CheckEncoders asks the inspector for each encoder's capability. Encoders with
// an empty capability set are reported unavailable; replacements targeting
// them fall back to the configured codec policy.
func CheckEncoders(ctx context.Context, inspector EncoderInspector, encoders []string) []Status {
	results := make([]Status, 0, len(encoders))
	for _, name := range encoders {
		status := Status{
			Name:        "Encoder " + name,
			Command:     name,
			Description: "Required for narration payloads that use " + name,
			Optional:    true,
		}
		formats, err := inspector.SupportedFormats(ctx, name)
		switch {
		case err != nil:
			status.Detail = fmt.Sprintf("capability check failed: %v", err)
		case len(formats) == 0:
			status.Detail = "encoder not available in ffmpeg build"
		default:
			status.Available = true
			status.Detail = summarizeFormats(formats)
		}
		results = append(results, status)
	}
	return results
}

func summarizeFormats(formats []ffmpeg.Format) string {
	rates := make([]string, 0, len(formats))
	seen := make(map[int]struct{})
	for _, f := range formats {
		if _, ok := seen[f.SampleRate]; ok {
			continue
		}
		seen[f.SampleRate] = struct{}{}
		rates = append(rates, fmt.Sprintf("%d", f.SampleRate))
	}
	return fmt.Sprintf("%d formats (rates: %s)", len(formats), strings.Join(rates, ", "))
}
