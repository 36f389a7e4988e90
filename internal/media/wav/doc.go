// Package wav decodes RIFF/WAVE recordings into interleaved 16-bit PCM and
// resamples them.
//
// Decoding is delegated to github.com/go-audio/wav; this package normalizes
// every supported integer bit depth to int16 so the encoder sees one sample
// layout.
package wav
