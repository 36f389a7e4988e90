package transcode

import (
	"context"
	"fmt"
	"os"

	"slidevox/internal/media/ffmpeg"
	"slidevox/internal/media/ffprobe"
)

// RunnerEncoder adapts an ffmpeg.Runner to Encoder.
type RunnerEncoder struct {
	Runner *ffmpeg.Runner
}

func (e RunnerEncoder) SupportedFormats(ctx context.Context, encoder string) ([]ffmpeg.Format, error) {
	return e.Runner.SupportedFormats(ctx, encoder)
}

func (e RunnerEncoder) StartSession(ctx context.Context, opts ffmpeg.SessionOptions) (EncodeSession, error) {
	session, err := e.Runner.StartSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// FFprobeVerifier checks encoded output with ffprobe.
type FFprobeVerifier struct {
	Binary  string
	WorkDir string
}

func (v FFprobeVerifier) Verify(ctx context.Context, data []byte, ext string, want ffprobe.Expectation) error {
	if v.WorkDir != "" {
		if err := os.MkdirAll(v.WorkDir, 0o755); err != nil {
			return fmt.Errorf("ensure work dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(v.WorkDir, "verify-*."+ext)
	if err != nil {
		return fmt.Errorf("create verify file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write verify file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close verify file: %w", err)
	}
	result, err := ffprobe.Inspect(ctx, v.Binary, path)
	if err != nil {
		return err
	}
	return result.Verify(want)
}
