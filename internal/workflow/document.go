package workflow

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"slidevox/internal/fileutil"
	"slidevox/internal/logging"
	"slidevox/internal/pptx"
	"slidevox/internal/replacement"
	"slidevox/internal/services"
)

func (r *Runner) processDocument(ctx context.Context, engine *replacement.Engine, path string, opts Options) DocumentResult {
	ctx = services.WithDocument(ctx, filepath.Base(path))
	ctx = services.WithRequestID(ctx, uuid.NewString())
	if timeout := r.cfg.DocumentTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res := r.runDocument(ctx, engine, path, opts)
	res.FinishedAt = time.Now()
	return res
}

func (r *Runner) runDocument(ctx context.Context, engine *replacement.Engine, path string, opts Options) DocumentResult {
	res := DocumentResult{Source: path, StartedAt: time.Now()}
	logger := logging.WithContext(ctx, r.logger)

	if err := ctx.Err(); err != nil {
		return r.fail(logger, res, err)
	}

	plan, err := r.Plan(ctx, path, opts.Locale)
	if plan != nil {
		res.Locale = plan.Locale.Tag
	}
	if err != nil {
		return r.planFailure(logger, res, err)
	}
	logger.Info("deck analysed",
		logging.String(logging.FieldEventType, "document_planned"),
		logging.String(logging.FieldLocale, plan.Locale.Tag),
		logging.String("asset_dir", plan.AssetDir),
		logging.Int("assets", len(plan.Assets)),
		logging.Int("slots", len(plan.Slots)),
		logging.Int("matched", len(plan.Matches.Candidates)),
	)
	for _, amb := range plan.Matches.Ambiguities {
		logging.WarnWithContext(logger, "ambiguous recordings left slot unmatched", "slot_ambiguous",
			logging.Int(logging.FieldShowIndex, amb.ShowIndex),
			logging.Uint64(logging.FieldSlotID, uint64(amb.SlotID)),
			logging.Any("assets", amb.Assets),
			logging.String(logging.FieldErrorHint, "remove extra takes or set matching.tie_break"),
			logging.String(logging.FieldImpact, "slide keeps its original narration"),
		)
	}

	if opts.DryRun {
		report, err := r.applyReadOnly(ctx, engine, plan)
		res.Report = report
		if err != nil {
			return r.fail(logger, res, err)
		}
		res.Status = DocumentUnchanged
		r.logDocument(logger, res)
		return res
	}

	output := filepath.Join(r.cfg.Paths.OutputDir, filepath.Base(path))
	if err := fileutil.CopyFileVerified(path, output); err != nil {
		return r.fail(logger, res, services.Wrap(services.ErrStorage, path, "copy deck", "Copy to output directory failed", err))
	}
	res.Output = output

	report, err := r.applyToCopy(ctx, engine, plan, output)
	res.Report = report
	if err != nil {
		if rmErr := os.Remove(output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("failed to remove partial output",
				logging.String("path", output),
				logging.Error(rmErr),
				logging.String(logging.FieldEventType, "output_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "delete the output deck manually"),
				logging.String(logging.FieldImpact, "output directory holds an unmodified copy"),
			)
		}
		res.Output = ""
		return r.fail(logger, res, err)
	}

	if report.Changed() {
		res.Status = DocumentProcessed
	} else {
		res.Status = DocumentUnchanged
	}
	r.logDocument(logger, res)
	return res
}

func (r *Runner) applyToCopy(ctx context.Context, engine *replacement.Engine, plan *Plan, output string) (replacement.Report, error) {
	pkg, err := pptx.Open(output, true)
	if err != nil {
		return replacement.Report{}, err
	}
	defer pkg.Close()

	report, err := engine.Apply(ctx, pkg, plan.Slots, plan.Matches)
	if err != nil {
		return report, err
	}
	if err := pkg.Commit(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) applyReadOnly(ctx context.Context, engine *replacement.Engine, plan *Plan) (replacement.Report, error) {
	pkg, err := pptx.Open(plan.Source, false)
	if err != nil {
		return replacement.Report{}, err
	}
	defer pkg.Close()
	return engine.Apply(ctx, pkg, plan.Slots, plan.Matches)
}

// planFailure classifies errors raised before any output exists. An
// unresolvable locale or a missing locale directory skips the deck unless
// strict locale handling is enabled.
func (r *Runner) planFailure(logger *slog.Logger, res DocumentResult, err error) DocumentResult {
	soft := errors.Is(err, services.ErrNotFound) ||
		(errors.Is(err, services.ErrUnresolvableLocale) && !r.cfg.Replacement.StrictLocale)
	if !soft {
		return r.fail(logger, res, err)
	}
	res.Status = DocumentSkipped
	res.Err = err
	res.Reason = services.ReasonCode(err)
	if errors.Is(err, services.ErrNotFound) {
		res.Reason = "missing_locale_dir"
	}
	logging.WarnWithContext(logger, "deck skipped", "document_skipped",
		logging.String(logging.FieldReason, res.Reason),
		logging.String(logging.FieldLocale, res.Locale),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, skipHint(res.Reason)),
		logging.String(logging.FieldImpact, "deck was not copied to the output directory"),
	)
	return res
}

func (r *Runner) fail(logger *slog.Logger, res DocumentResult, err error) DocumentResult {
	res.Status = DocumentFailed
	res.Err = err
	res.Reason = failureReason(err)
	logging.ErrorWithContext(logger, "deck failed", "document_failed",
		logging.String(logging.FieldReason, res.Reason),
		logging.String("scope", services.ScopeOf(err).String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, failureHint(res.Reason)),
		logging.String(logging.FieldImpact, "no output written for this deck"),
	)
	return res
}

func (r *Runner) logDocument(logger *slog.Logger, res DocumentResult) {
	logger.Info("deck complete",
		logging.String(logging.FieldEventType, "document_complete"),
		logging.String("status", string(res.Status)),
		logging.String("output", res.Output),
		logging.Int("written", res.Report.Count(replacement.StateWritten)),
		logging.Int("planned", res.Report.Count(replacement.StatePlanned)),
		logging.Int("skipped", res.Report.Count(replacement.StateSkipped)),
		logging.Int("unmatched", res.Report.Count(replacement.StateUnmatched)),
		logging.Duration("duration", time.Since(res.StartedAt)),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return services.ReasonCode(err)
	}
}

func skipHint(reason string) string {
	if reason == "missing_locale_dir" {
		return "create the locale directory under paths.assets_dir or pass --locale"
	}
	return "rename the deck to <name>_<target>_<source>_<suffix>.pptx or pass --locale"
}

func failureHint(reason string) string {
	switch reason {
	case "malformed_package":
		return "open and re-save the deck in PowerPoint"
	case "storage":
		return "check that the deck exists and the output directory is writable"
	case "package_busy":
		return "another slidevox run is writing this output; wait for it to finish"
	case "timeout":
		return "raise batch.document_timeout_seconds"
	case "unresolvable_locale":
		return "rename the deck or disable replacement.strict_locale"
	default:
		return "check logs for details"
	}
}
