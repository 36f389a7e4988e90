package replacement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"slidevox/internal/config"
	"slidevox/internal/logging"
	"slidevox/internal/matching"
	"slidevox/internal/media/wav"
	"slidevox/internal/pptx"
	"slidevox/internal/services"
	"slidevox/internal/slots"
	"slidevox/internal/transcode"
)

// PackageStore is the package access the engine needs.
type PackageStore interface {
	Path() string
	ResolveSlide(relID string) (string, error)
	MediaRefs(slidePart string) ([]pptx.MediaRef, error)
	ReadPayload(partName string) ([]byte, error)
	OpenPayloadWriter(partName string) (*pptx.PayloadWriter, error)
}

// Transcoder encodes WAV recordings for a target.
type Transcoder interface {
	Transcode(ctx context.Context, wavData []byte, target transcode.Target) (transcode.Result, error)
}

// Options holds the per-slot policies.
type Options struct {
	// MinAssetBytes is raised to config.MinSuspectAssetBytes when lower.
	MinAssetBytes         int
	CodecPolicy           string
	AbortOnTranscodeError bool
	DryRun                bool
}

// OptionsFromConfig reads the replacement policies from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MinAssetBytes:         cfg.Replacement.MinAssetBytes,
		CodecPolicy:           cfg.Replacement.OnCodecUnavailable,
		AbortOnTranscodeError: cfg.Replacement.AbortOnTranscodeError,
	}
}

// Engine applies matched recordings to a package.
type Engine struct {
	transcoder Transcoder
	opts       Options
	logger     *slog.Logger
	readFile   func(string) ([]byte, error)
}

// New returns an Engine.
func New(transcoder Transcoder, opts Options, logger *slog.Logger) *Engine {
	if opts.CodecPolicy == "" {
		opts.CodecPolicy = config.CodecPolicySkip
	}
	if opts.MinAssetBytes < config.MinSuspectAssetBytes {
		opts.MinAssetBytes = config.MinSuspectAssetBytes
	}
	return &Engine{
		transcoder: transcoder,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "replacement"),
		readFile:   os.ReadFile,
	}
}

// Apply processes items in show order against pkg.
func (e *Engine) Apply(ctx context.Context, pkg PackageStore, items []slots.Slot, matches matching.Result) (Report, error) {
	var report Report
	for _, slot := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		slotCtx := services.WithSlotID(ctx, slot.SlotID)
		outcome, err := e.applySlot(slotCtx, pkg, slot, matches)
		report.Outcomes = append(report.Outcomes, outcome)
		e.logOutcome(slotCtx, slot, outcome)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (e *Engine) applySlot(ctx context.Context, pkg PackageStore, slot slots.Slot, matches matching.Result) (Outcome, error) {
	out := Outcome{SlotID: slot.SlotID, ShowIndex: slot.ShowIndex, State: StateUnmatched}
	asset, ok := matches.Lookup(slot.SlotID)
	if !ok {
		return out, nil
	}
	out.AssetPath = asset

	slidePart, err := pkg.ResolveSlide(slot.SlideRef)
	if err != nil {
		return out, err
	}
	refs, err := pkg.MediaRefs(slidePart)
	if err != nil {
		return out, err
	}
	ref, ok := firstAudio(refs)
	if !ok {
		return skip(out, services.Wrap(services.ErrNoMediaAttached, pkg.Path(), "resolve media", fmt.Sprintf("Slide %s has no recognized audio payload", slidePart), nil)), nil
	}
	out.PartName = ref.PartName
	out.ContentType = ref.ContentType
	target, _ := transcode.TargetFor(ref.ContentType)

	data, err := e.readFile(asset)
	if err != nil {
		return skip(out, services.Wrap(services.ErrInvalidSourceAudio, pkg.Path(), "read asset", "Recording unreadable", err)), nil
	}
	if len(data) < e.opts.MinAssetBytes {
		return skip(out, services.Wrap(services.ErrSuspectAsset, pkg.Path(), "read asset", fmt.Sprintf("Recording is %d bytes, below the %d byte minimum", len(data), e.opts.MinAssetBytes), nil)), nil
	}

	var payload []byte
	switch {
	case target.Passthrough:
		if err := wav.Validate(data); err != nil {
			return skip(out, err), nil
		}
		payload, out.Mode = data, ModePassThrough
	case e.opts.DryRun:
		out.Mode = ModeTranscoded
	default:
		res, err := e.transcoder.Transcode(ctx, data, target)
		switch {
		case err == nil:
			payload, out.Mode, out.Resampled = res.Data, ModeTranscoded, res.Resampled
		case errors.Is(err, services.ErrCodecUnavailable):
			switch e.opts.CodecPolicy {
			case config.CodecPolicyAbort:
				out = skip(out, err)
				return out, err
			case config.CodecPolicyPassthrough:
				if verr := wav.Validate(data); verr != nil {
					return skip(out, verr), nil
				}
				payload, out.Mode = data, ModePassThrough
			default:
				return skip(out, err), nil
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return skip(out, err), err
		default:
			out = skip(out, err)
			if e.opts.AbortOnTranscodeError {
				return out, err
			}
			return out, nil
		}
	}

	if e.opts.DryRun {
		out.State = StatePlanned
		return out, nil
	}
	if err := writePayload(pkg, ref.PartName, payload); err != nil {
		return out, err
	}
	out.State = StateWritten
	out.BytesWritten = len(payload)
	return out, nil
}

func writePayload(pkg PackageStore, partName string, payload []byte) (err error) {
	w, err := pkg.OpenPayloadWriter(partName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if _, err := w.Write(payload); err != nil {
		return services.Wrap(services.ErrStorage, pkg.Path(), "write payload", "Payload write failed for "+partName, err)
	}
	return nil
}

func firstAudio(refs []pptx.MediaRef) (pptx.MediaRef, bool) {
	for _, ref := range refs {
		if transcode.IsRecognizedAudio(ref.ContentType) {
			return ref, true
		}
	}
	return pptx.MediaRef{}, false
}

func skip(out Outcome, err error) Outcome {
	out.State = StateSkipped
	out.Mode = ModeNone
	out.Reason = services.ReasonCode(err)
	out.Err = err
	return out
}

func (e *Engine) logOutcome(ctx context.Context, slot slots.Slot, out Outcome) {
	logger := logging.WithContext(ctx, e.logger).With(logging.Int(logging.FieldShowIndex, slot.ShowIndex))
	switch out.State {
	case StateUnmatched:
		logger.Debug("no recording matched slot")
	case StateWritten, StatePlanned:
		logger.Info("narration replaced",
			logging.String("state", string(out.State)),
			logging.String("mode", string(out.Mode)),
			logging.String("asset", out.AssetPath),
			logging.String("part", out.PartName),
			logging.Int("bytes", out.BytesWritten),
			logging.Bool("resampled", out.Resampled),
		)
	case StateSkipped:
		if services.Informational(out.Err) {
			logger.Info("slot skipped",
				logging.String(logging.FieldReason, out.Reason),
				logging.String("asset", out.AssetPath),
				logging.Error(out.Err),
			)
			return
		}
		logging.WarnWithContext(logger, "slot skipped; original narration kept", "slot_skipped",
			logging.String(logging.FieldReason, out.Reason),
			logging.String("asset", out.AssetPath),
			logging.Error(out.Err),
			logging.String(logging.FieldErrorHint, hintFor(out.Reason)),
			logging.String(logging.FieldImpact, "slide keeps its original narration"),
		)
	}
}

func hintFor(reason string) string {
	switch reason {
	case "codec_unavailable":
		return "install an ffmpeg build with the required encoder or set replacement.on_codec_unavailable"
	case "unsupported_channel_layout":
		return "re-export the recording as mono or stereo"
	case "invalid_source_audio":
		return "re-export the recording as PCM WAV"
	case "encoding_failed":
		return "run slidevox check and inspect the ffmpeg error above"
	default:
		return "check logs for details"
	}
}
