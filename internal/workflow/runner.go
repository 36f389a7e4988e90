package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"slidevox/internal/assets"
	"slidevox/internal/config"
	"slidevox/internal/ledger"
	"slidevox/internal/logging"
	"slidevox/internal/notifications"
	"slidevox/internal/preflight"
	"slidevox/internal/replacement"
	"slidevox/internal/services"
	"slidevox/internal/staging"
)

const (
	scratchMaxAge = 24 * time.Hour
	commitMaxAge  = time.Hour
)

// Runner processes batches of decks.
type Runner struct {
	cfg        *config.Config
	transcoder replacement.Transcoder
	ledger     *ledger.Store
	source     assets.Source
	notifier   notifications.Service
	logger     *slog.Logger
}

// New returns a Runner. store may be nil when the ledger is disabled.
func New(cfg *config.Config, transcoder replacement.Transcoder, store *ledger.Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:        cfg,
		transcoder: transcoder,
		ledger:     store,
		source:     assets.DirSource{},
		notifier:   notifications.NewService(cfg),
		logger:     logging.NewComponentLogger(logger, "workflow"),
	}
}

// Run processes every deck in paths. The returned error is non-nil only for
// run-scoped failures; per-deck failures are reported in the result.
func (r *Runner) Run(ctx context.Context, paths []string, opts Options) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)
	result := &RunResult{RunID: runID, DryRun: opts.DryRun}

	if err := r.prepare(ctx, logger); err != nil {
		result.Err = err
		r.notifyAborted(ctx, logger, runID, err)
		return result, err
	}

	r.startLedger(ctx, logger, runID, opts.DryRun)

	workers := r.cfg.Batch.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if workers < 1 {
		workers = 1
	}

	logger.Info("batch started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("documents", len(paths)),
		logging.Int("workers", workers),
		logging.Bool("dry_run", opts.DryRun),
	)
	start := time.Now()

	engineOpts := replacement.OptionsFromConfig(r.cfg)
	engineOpts.DryRun = opts.DryRun
	engine := replacement.New(r.transcoder, engineOpts, r.logger)

	results := make([]DocumentResult, len(paths))
	claimed := claimOutputs(paths)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, path := range paths {
		if groupCtx.Err() != nil {
			results[i] = canceledResult(path, groupCtx.Err())
			continue
		}
		i, path := i, path
		group.Go(func() error {
			if owner := claimed[filepath.Base(path)]; owner != path {
				results[i] = duplicateResult(path, owner)
			} else {
				results[i] = r.processDocument(groupCtx, engine, path, opts)
			}
			r.recordDocument(ctx, runID, results[i])
			if services.ScopeOf(results[i].Err) == services.ScopeRun {
				return results[i].Err
			}
			return nil
		})
	}
	runErr := group.Wait()

	result.Documents = results
	result.Err = runErr
	r.finishLedger(ctx, logger, result)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("processed", result.Count(DocumentProcessed)),
		logging.Int("unchanged", result.Count(DocumentUnchanged)),
		logging.Int("skipped", result.Count(DocumentSkipped)),
		logging.Int("failed", result.Count(DocumentFailed)),
		logging.Duration("duration", time.Since(start)),
	}
	if runErr != nil {
		logging.ErrorWithContext(logger, "batch aborted", "run_aborted", append(attrs,
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, hintForRunError(runErr)),
			logging.String(logging.FieldImpact, "remaining decks were not processed"),
		)...)
		r.notifyAborted(ctx, logger, runID, runErr)
		return result, runErr
	}
	logger.Info("batch complete", logging.Args(attrs...)...)
	r.notifyCompleted(ctx, logger, result, time.Since(start))
	return result, nil
}

// prepare creates output directories, reclaims scratch from interrupted
// runs, and verifies the directories the batch depends on.
func (r *Runner) prepare(ctx context.Context, logger *slog.Logger) error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "", "prepare run", "Create output directories", err)
	}
	staging.CleanStale(ctx, r.cfg.Paths.WorkDir, scratchMaxAge, logger)
	staging.CleanOrphanedCommits(ctx, r.cfg.Paths.OutputDir, commitMaxAge, logger)

	if failed := preflight.Failed(preflight.RunAll(ctx, r.cfg)); len(failed) > 0 {
		for _, f := range failed {
			logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
				logging.String("check", f.Name),
				logging.String("detail", f.Detail),
				logging.String(logging.FieldErrorHint, "run slidevox check for the full report"),
				logging.String(logging.FieldImpact, "batch not started"),
			)
		}
		return services.Wrap(services.ErrConfiguration, "", "preflight",
			fmt.Sprintf("%s: %s", failed[0].Name, failed[0].Detail), nil)
	}
	return nil
}

// claimOutputs assigns each output base name to the first input that uses
// it. Later inputs with the same base name would overwrite that output.
func claimOutputs(paths []string) map[string]string {
	claimed := make(map[string]string, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		if _, ok := claimed[base]; !ok {
			claimed[base] = path
		}
	}
	return claimed
}

func duplicateResult(path, owner string) DocumentResult {
	now := time.Now()
	return DocumentResult{
		Source:     path,
		Status:     DocumentSkipped,
		Reason:     "duplicate_output",
		Err:        fmt.Errorf("output name %s already produced by %s", filepath.Base(path), owner),
		StartedAt:  now,
		FinishedAt: now,
	}
}

func canceledResult(path string, err error) DocumentResult {
	now := time.Now()
	return DocumentResult{
		Source:     path,
		Status:     DocumentFailed,
		Reason:     "canceled",
		Err:        err,
		StartedAt:  now,
		FinishedAt: now,
	}
}

func hintForRunError(err error) string {
	switch {
	case errors.Is(err, services.ErrCodecUnavailable):
		return "install an ffmpeg build with the required encoder or set replacement.on_codec_unavailable"
	case errors.Is(err, services.ErrConfiguration):
		return "run slidevox check and fix the reported paths"
	default:
		return "check logs for details"
	}
}
