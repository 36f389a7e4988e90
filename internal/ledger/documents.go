package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// RecordDocument stores a document and its slot outcomes in one transaction.
func (s *Store) RecordDocument(ctx context.Context, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("record document: nil document")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin document tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO documents (
                run_id, source_path, output_path, locale, status, reason, error_message,
                written, skipped, unmatched, started_at, finished_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.RunID,
			doc.SourcePath,
			nullableString(doc.OutputPath),
			nullableString(doc.Locale),
			doc.Status,
			nullableString(doc.Reason),
			nullableString(doc.ErrorMessage),
			doc.Written,
			doc.Skipped,
			doc.Unmatched,
			formatTime(doc.StartedAt),
			formatTime(doc.FinishedAt),
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		for _, slot := range doc.Slots {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO slot_outcomes (
                    document_id, slot_id, show_index, state, mode, reason, asset_path, part_name, bytes_written
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id,
				int64(slot.SlotID),
				slot.ShowIndex,
				slot.State,
				nullableString(slot.Mode),
				nullableString(slot.Reason),
				nullableString(slot.AssetPath),
				nullableString(slot.PartName),
				slot.BytesWritten,
			); err != nil {
				return fmt.Errorf("insert slot outcome: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit document: %w", err)
		}
		doc.ID = id
		return nil
	})
}

// Documents returns the documents of a run with their slot outcomes.
func (s *Store) Documents(ctx context.Context, runID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source_path, output_path, locale, status, reason, error_message,
                written, skipped, unmatched, started_at, finished_at
         FROM documents WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var docs []Document
	for rows.Next() {
		var (
			doc                              Document
			output, locale, reason, errorMsg sql.NullString
			started, finished                sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.RunID, &doc.SourcePath, &output, &locale, &doc.Status, &reason, &errorMsg,
			&doc.Written, &doc.Skipped, &doc.Unmatched, &started, &finished); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.OutputPath = output.String
		doc.Locale = locale.String
		doc.Reason = reason.String
		doc.ErrorMessage = errorMsg.String
		doc.StartedAt = parseTime(started)
		doc.FinishedAt = parseTime(finished)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range docs {
		slots, err := s.slotOutcomes(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Slots = slots
	}
	return docs, nil
}

func (s *Store) slotOutcomes(ctx context.Context, documentID int64) ([]SlotRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot_id, show_index, state, mode, reason, asset_path, part_name, bytes_written
         FROM slot_outcomes WHERE document_id = ? ORDER BY show_index, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list slot outcomes: %w", err)
	}
	defer rows.Close()

	var out []SlotRecord
	for rows.Next() {
		var (
			rec                           SlotRecord
			slotID                        int64
			mode, reason, asset, partName sql.NullString
		)
		if err := rows.Scan(&slotID, &rec.ShowIndex, &rec.State, &mode, &reason, &asset, &partName, &rec.BytesWritten); err != nil {
			return nil, fmt.Errorf("scan slot outcome: %w", err)
		}
		rec.SlotID = uint32(slotID)
		rec.Mode = mode.String
		rec.Reason = reason.String
		rec.AssetPath = asset.String
		rec.PartName = partName.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
