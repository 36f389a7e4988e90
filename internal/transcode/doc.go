// Package transcode converts WAV recordings into the codec and container a
// narration payload already uses.
//
// The Transcoder negotiates an encoder format with the Encoder capability,
// resamples when the recording's rate is not accepted, and streams PCM into
// an encode session in fixed-duration chunks. Decode and encode resources
// are released on every exit path.
package transcode
