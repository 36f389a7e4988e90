package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, started_at, finished_at, status, documents, failed, dry_run, error_message"

// StartRun records a new run in the running state.
func (s *Store) StartRun(ctx context.Context, id string, dryRun bool) (*Run, error) {
	now := time.Now().UTC()
	if _, err := s.exec(ctx,
		`INSERT INTO runs (id, started_at, status, dry_run) VALUES (?, ?, ?, ?)`,
		id, formatTime(now), RunRunning, boolToInt(dryRun),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, StartedAt: now, Status: RunRunning, DryRun: dryRun}, nil
}

// FinishRun stores the final status and counters of a run.
func (s *Store) FinishRun(ctx context.Context, id, status string, documents, failed int, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	if _, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, documents = ?, failed = ?, error_message = ? WHERE id = ?`,
		formatTime(time.Now()), status, documents, failed, nullableString(message), id,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches a run by id. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		started    sql.NullString
		finished   sql.NullString
		dryRun     int
		errMessage sql.NullString
	)
	if err := scanner.Scan(&run.ID, &started, &finished, &run.Status, &run.Documents, &run.Failed, &dryRun, &errMessage); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.DryRun = dryRun != 0
	run.ErrorMessage = errMessage.String
	return &run, nil
}
