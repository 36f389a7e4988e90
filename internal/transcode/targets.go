package transcode

import (
	"sort"
	"strings"
)

// Target describes the encoding a payload content type requires.
type Target struct {
	Name        string
	Encoder     string
	Container   string
	Extension   string
	VerifyCodec string
	Passthrough bool
}

var (
	targetWAV = Target{Name: "wav", Extension: "wav", Passthrough: true}
	targetM4A = Target{Name: "aac-mp4", Encoder: "aac", Container: "ipod", Extension: "m4a", VerifyCodec: "aac"}
	targetAAC = Target{Name: "aac-adts", Encoder: "aac", Container: "adts", Extension: "aac", VerifyCodec: "aac"}
	targetMP3 = Target{Name: "mp3", Encoder: "libmp3lame", Container: "mp3", Extension: "mp3", VerifyCodec: "mp3"}
)

var targetsByContentType = map[string]Target{
	"audio/wav":      targetWAV,
	"audio/x-wav":    targetWAV,
	"audio/wave":     targetWAV,
	"audio/vnd.wave": targetWAV,
	"audio/mp4":      targetM4A,
	"audio/x-m4a":    targetM4A,
	"audio/m4a":      targetM4A,
	"audio/aac":      targetAAC,
	"audio/x-aac":    targetAAC,
	"audio/mpeg":     targetMP3,
	"audio/mp3":      targetMP3,
	"audio/x-mp3":    targetMP3,
}

// TargetFor maps a payload content type to its target encoding. Parameters
// such as "; codecs=..." are ignored.
func TargetFor(contentType string) (Target, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	t, ok := targetsByContentType[ct]
	return t, ok
}

// IsRecognizedAudio reports whether a content type is a narration payload
// this package can produce.
func IsRecognizedAudio(contentType string) bool {
	_, ok := TargetFor(contentType)
	return ok
}

// Encoders lists the distinct ffmpeg encoders the known targets use, sorted.
func Encoders() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range targetsByContentType {
		if t.Passthrough || t.Encoder == "" {
			continue
		}
		if _, ok := seen[t.Encoder]; ok {
			continue
		}
		seen[t.Encoder] = struct{}{}
		out = append(out, t.Encoder)
	}
	sort.Strings(out)
	return out
}
