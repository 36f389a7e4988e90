package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// SessionOptions describes one encode.
type SessionOptions struct {
	Encoder    string
	Container  string
	Extension  string
	Bitrate    string
	SampleRate int
	Channels   int
}

// Session is a running ffmpeg encode fed through stdin.
type Session struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	outPath string
	done    bool
}

// StartSession launches ffmpeg for opts. The process is detached from ctx
// cancellation so an encode in progress is never cut short; callers stop
// early with Abort.
func (r *Runner) StartSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.SampleRate <= 0 || opts.Channels <= 0 {
		return nil, fmt.Errorf("ffmpeg session: invalid input format %d Hz x %d", opts.SampleRate, opts.Channels)
	}
	if r.WorkDir != "" {
		if err := os.MkdirAll(r.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("ffmpeg session: ensure work dir: %w", err)
		}
	}
	ext := strings.TrimPrefix(opts.Extension, ".")
	if ext == "" {
		ext = "bin"
	}
	out, err := os.CreateTemp(r.WorkDir, "encode-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg session: create output: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(opts.SampleRate),
		"-ac", strconv.Itoa(opts.Channels),
		"-i", "pipe:0",
		"-vn",
		"-c:a", opts.Encoder,
	}
	if opts.Bitrate != "" {
		args = append(args, "-b:a", opts.Bitrate)
	}
	if opts.Container == "ipod" || opts.Container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	if opts.Container != "" {
		args = append(args, "-f", opts.Container)
	}
	args = append(args, outPath)

	s := &Session{outPath: outPath}
	s.cmd = exec.CommandContext(context.WithoutCancel(ctx), r.Binary, args...) //nolint:gosec
	s.cmd.Stderr = &s.stderr
	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		_ = os.Remove(outPath)
		return nil, fmt.Errorf("ffmpeg session: stdin pipe: %w", err)
	}
	s.stdin = stdin
	if err := s.cmd.Start(); err != nil {
		_ = os.Remove(outPath)
		return nil, fmt.Errorf("ffmpeg session: start: %w", err)
	}
	return s, nil
}

// Write feeds raw s16le samples to the encoder.
func (s *Session) Write(pcm []byte) error {
	if s.done {
		return errors.New("ffmpeg session: write after close")
	}
	if _, err := s.stdin.Write(pcm); err != nil {
		return fmt.Errorf("ffmpeg session: write: %w: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

// Close flushes the encoder and returns the encoded container bytes.
func (s *Session) Close() ([]byte, error) {
	if s.done {
		return nil, errors.New("ffmpeg session: already closed")
	}
	s.done = true
	defer os.Remove(s.outPath)

	closeErr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	if closeErr != nil {
		return nil, fmt.Errorf("ffmpeg encode: close stdin: %w", closeErr)
	}
	data, err := os.ReadFile(s.outPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg encode: read output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("ffmpeg encode: empty output")
	}
	return data, nil
}

// Abort kills the encoder and removes scratch output. It is a no-op after
// Close.
func (s *Session) Abort() {
	if s == nil || s.done {
		return
	}
	s.done = true
	_ = s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	_ = os.Remove(s.outPath)
}
