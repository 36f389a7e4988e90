// Package ffmpeg drives the ffmpeg binary as the audio encoder.
//
// Runner answers which (sample rate, channel count) pairs an encoder accepts,
// parsed from "ffmpeg -h encoder=<name>" and cached per encoder for the
// lifetime of the Runner. Session streams raw s16le PCM into an ffmpeg
// process over stdin and collects the encoded container from a scratch file.
package ffmpeg
