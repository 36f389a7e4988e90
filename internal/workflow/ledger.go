package workflow

import (
	"context"
	"log/slog"

	"slidevox/internal/ledger"
	"slidevox/internal/logging"
	"slidevox/internal/replacement"
)

// Ledger writes are best effort: a history failure never fails a deck.

func (r *Runner) startLedger(ctx context.Context, logger *slog.Logger, runID string, dryRun bool) {
	if r.ledger == nil {
		return
	}
	if _, err := r.ledger.StartRun(ctx, runID, dryRun); err != nil {
		r.warnLedger(logger, "record run start", err)
	}
}

func (r *Runner) finishLedger(ctx context.Context, logger *slog.Logger, result *RunResult) {
	if r.ledger == nil {
		return
	}
	status := ledger.RunCompleted
	switch {
	case result.Err != nil:
		status = ledger.RunFailed
	case ctx.Err() != nil:
		status = ledger.RunCanceled
	}
	ctx = context.WithoutCancel(ctx)
	if err := r.ledger.FinishRun(ctx, result.RunID, status, len(result.Documents), result.Count(DocumentFailed), result.Err); err != nil {
		r.warnLedger(logger, "record run finish", err)
	}
}

func (r *Runner) recordDocument(ctx context.Context, runID string, res DocumentResult) {
	if r.ledger == nil {
		return
	}
	doc := &ledger.Document{
		RunID:      runID,
		SourcePath: res.Source,
		OutputPath: res.Output,
		Locale:     res.Locale,
		Status:     string(res.Status),
		Reason:     res.Reason,
		Written:    res.Report.Count(replacement.StateWritten),
		Skipped:    res.Report.Count(replacement.StateSkipped),
		Unmatched:  res.Report.Count(replacement.StateUnmatched),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
	if res.Err != nil {
		doc.ErrorMessage = res.Err.Error()
	}
	for _, o := range res.Report.Outcomes {
		doc.Slots = append(doc.Slots, ledger.SlotRecord{
			SlotID:       o.SlotID,
			ShowIndex:    o.ShowIndex,
			State:        string(o.State),
			Mode:         string(o.Mode),
			Reason:       o.Reason,
			AssetPath:    o.AssetPath,
			PartName:     o.PartName,
			BytesWritten: o.BytesWritten,
		})
	}
	if err := r.ledger.RecordDocument(context.WithoutCancel(ctx), doc); err != nil {
		r.warnLedger(logging.WithContext(ctx, r.logger), "record document", err)
	}
}

func (r *Runner) warnLedger(logger *slog.Logger, op string, err error) {
	logging.WarnWithContext(logger, "run ledger write failed", "ledger_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check ledger.path permissions"),
		logging.String(logging.FieldImpact, "run history is incomplete"),
	)
}
