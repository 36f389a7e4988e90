// Package ffprobe inspects encoded narration payloads with ffprobe.
//
// Inspect runs ffprobe and decodes its JSON output into a Result; Verify
// checks that an encoded file carries exactly the audio stream the encoder
// was asked to produce.
package ffprobe
