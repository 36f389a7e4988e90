package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"slidevox/internal/logging"
	"slidevox/internal/notifications"
)

func (r *Runner) notifyCompleted(ctx context.Context, logger *slog.Logger, result *RunResult, elapsed time.Duration) {
	summary := notifications.RunSummary{
		RunID:     result.RunID,
		DryRun:    result.DryRun,
		Processed: result.Count(DocumentProcessed),
		Unchanged: result.Count(DocumentUnchanged),
		Skipped:   result.Count(DocumentSkipped),
		Failed:    result.Count(DocumentFailed),
		Duration:  elapsed,
	}
	if err := r.notifier.NotifyRunCompleted(context.WithoutCancel(ctx), summary); err != nil {
		r.warnNotify(logger, err)
	}
}

// notifyAborted skips user cancellation; the operator already knows.
func (r *Runner) notifyAborted(ctx context.Context, logger *slog.Logger, runID string, runErr error) {
	if errors.Is(runErr, context.Canceled) {
		return
	}
	if err := r.notifier.NotifyRunAborted(context.WithoutCancel(ctx), runID, runErr); err != nil {
		r.warnNotify(logger, err)
	}
}

func (r *Runner) warnNotify(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "notification failed", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
		logging.String(logging.FieldImpact, "run summary not delivered"),
	)
}
