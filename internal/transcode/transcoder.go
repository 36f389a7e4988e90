package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"slidevox/internal/config"
	"slidevox/internal/logging"
	"slidevox/internal/media/ffmpeg"
	"slidevox/internal/media/ffprobe"
	"slidevox/internal/media/wav"
	"slidevox/internal/services"
)

// EncodeSession receives PCM and yields the encoded container.
type EncodeSession interface {
	Write(pcm []byte) error
	Close() ([]byte, error)
	Abort()
}

// Encoder is the platform encode capability.
type Encoder interface {
	SupportedFormats(ctx context.Context, encoder string) ([]ffmpeg.Format, error)
	StartSession(ctx context.Context, opts ffmpeg.SessionOptions) (EncodeSession, error)
}

// Verifier checks encoded output.
type Verifier interface {
	Verify(ctx context.Context, data []byte, ext string, want ffprobe.Expectation) error
}

// Result is an encoded payload.
type Result struct {
	Data       []byte
	Input      ffmpeg.Format
	Output     ffmpeg.Format
	Resampled  bool
	DurationMS int64
}

// Options tunes a Transcoder.
type Options struct {
	AACBitrate   string
	MP3Bitrate   string
	ChunkSeconds int
}

// Transcoder turns WAV recordings into target encodings.
type Transcoder struct {
	encoder  Encoder
	verifier Verifier
	opts     Options
	logger   *slog.Logger
}

// New builds a Transcoder backed by ffmpeg and, when enabled, ffprobe.
func New(cfg *config.Config, logger *slog.Logger) *Transcoder {
	runner := ffmpeg.NewRunner(cfg.FFmpegBinary(), cfg.Paths.WorkDir)
	var verifier Verifier
	if cfg.Transcode.VerifyOutput {
		verifier = FFprobeVerifier{Binary: cfg.FFprobeBinary(), WorkDir: cfg.Paths.WorkDir}
	}
	return NewWithEncoder(RunnerEncoder{Runner: runner}, verifier, Options{
		AACBitrate:   cfg.Transcode.AACBitrate,
		MP3Bitrate:   cfg.Transcode.MP3Bitrate,
		ChunkSeconds: cfg.Transcode.ChunkSeconds,
	}, logger)
}

// NewWithEncoder builds a Transcoder around explicit capabilities. verifier
// may be nil.
func NewWithEncoder(enc Encoder, verifier Verifier, opts Options, logger *slog.Logger) *Transcoder {
	if opts.ChunkSeconds <= 0 {
		opts.ChunkSeconds = 1
	}
	return &Transcoder{
		encoder:  enc,
		verifier: verifier,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "transcode"),
	}
}

// Transcode encodes a complete WAV buffer for target.
func (t *Transcoder) Transcode(ctx context.Context, wavData []byte, target Target) (res Result, err error) {
	if target.Passthrough {
		return Result{}, fmt.Errorf("transcode: target %s does not need encoding", target.Name)
	}

	supported, err := t.encoder.SupportedFormats(ctx, target.Encoder)
	if err != nil {
		return Result{}, services.Wrap(services.ErrEncodingFailed, "", "query encoder", "Capability query for "+target.Encoder+" failed", err)
	}
	if len(supported) == 0 {
		return Result{}, services.Wrap(services.ErrCodecUnavailable, "", "query encoder", "No encoder available for "+target.Encoder, nil)
	}

	pcm, err := wav.Decode(wavData)
	if err != nil {
		return Result{}, err
	}
	input := ffmpeg.Format{SampleRate: pcm.SampleRate, Channels: pcm.Channels}
	output, err := SelectFormat(supported, pcm.SampleRate, pcm.Channels)
	if err != nil {
		return Result{}, err
	}

	res = Result{Input: input, Output: output}
	if output.SampleRate != pcm.SampleRate {
		pcm, err = wav.Resample(pcm, output.SampleRate)
		if err != nil {
			return Result{}, services.Wrap(services.ErrEncodingFailed, "", "resample", "Resample failed", err)
		}
		res.Resampled = true
		logging.WithContext(ctx, t.logger).Debug("resampling narration",
			logging.Int("from_hz", input.SampleRate),
			logging.Int("to_hz", output.SampleRate),
			logging.Int("channels", output.Channels),
		)
	}
	res.DurationMS = pcm.Duration().Milliseconds()

	session, err := t.encoder.StartSession(ctx, ffmpeg.SessionOptions{
		Encoder:    target.Encoder,
		Container:  target.Container,
		Extension:  target.Extension,
		Bitrate:    t.bitrateFor(target),
		SampleRate: output.SampleRate,
		Channels:   output.Channels,
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrEncodingFailed, "", "start encoder", "Encoder session failed to start", err)
	}
	defer session.Abort()

	raw := pcm.Bytes()
	chunk := output.SampleRate * output.Channels * 2 * t.opts.ChunkSeconds
	for off := 0; off < len(raw); off += chunk {
		end := off + chunk
		if end > len(raw) {
			end = len(raw)
		}
		if err := session.Write(raw[off:end]); err != nil {
			return Result{}, services.Wrap(services.ErrEncodingFailed, "", "encode", "Encoder rejected audio", err)
		}
	}
	data, err := session.Close()
	if err != nil {
		return Result{}, services.Wrap(services.ErrEncodingFailed, "", "encode", "Encoder did not finish", err)
	}

	if t.verifier != nil {
		want := ffprobe.Expectation{Codec: target.VerifyCodec, SampleRate: output.SampleRate, Channels: output.Channels}
		if err := t.verifier.Verify(ctx, data, target.Extension, want); err != nil {
			if errors.Is(err, context.Canceled) {
				return Result{}, err
			}
			return Result{}, services.Wrap(services.ErrEncodingFailed, "", "verify output", "Encoded output failed verification", err)
		}
	}

	res.Data = data
	return res, nil
}

func (t *Transcoder) bitrateFor(target Target) string {
	switch target.Encoder {
	case "libmp3lame":
		return t.opts.MP3Bitrate
	default:
		return t.opts.AACBitrate
	}
}
