// Package deps reports the availability of the external binaries and ffmpeg
// encoders that narration replacement relies on.
package deps
