package sqlite

import (
	"database/sql"
	"time"

	"github.com/italolelis/batch_restyler/internal/storage"
)

type OutcomeRepository struct {
	db *sql.DB
}

func NewOutcomeRepository(dbConn *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: dbConn}
}

// RecordOutcome appends one item's result to the journal.
func (r *OutcomeRepository) RecordOutcome(rec storage.OutcomeRecord) error {
	if rec.RecordedAt == "" {
		rec.RecordedAt = time.Now().Format(time.RFC3339)
	}

	_, err := r.db.Exec(`
		INSERT INTO outcomes (run_id, file_name, batch_index, outcome, archived_path, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.RunID, rec.FileName, rec.BatchIndex, rec.Outcome, rec.ArchivedPath, rec.RecordedAt)

	return err
}

func (r *OutcomeRepository) GetOutcomes(runID string) ([]storage.OutcomeRecord, error) {
	rows, err := r.db.Query(`SELECT run_id, file_name, batch_index, outcome, archived_path, recorded_at FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []storage.OutcomeRecord

	for rows.Next() {
		var record storage.OutcomeRecord

		var archivedPath sql.NullString

		err := rows.Scan(&record.RunID, &record.FileName, &record.BatchIndex, &record.Outcome, &archivedPath, &record.RecordedAt)
		if err != nil {
			return nil, err
		}

		if archivedPath.Valid {
			record.ArchivedPath = archivedPath.String
		}

		outcomes = append(outcomes, record)
	}

	return outcomes, rows.Err()
}

func (r *OutcomeRepository) GetSummary(runID string) (storage.Summary, error) {
	var s storage.Summary

	err := r.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		FROM outcomes
		WHERE run_id = ?
	`, storage.OutcomeSuccess, storage.OutcomeFailed, runID).Scan(&s.Total, &s.Succeeded, &s.Failed)

	return s, err
}
