// database_runs.go - Trainingsläufe protokollieren
// Enthält: insertRun, updateRun, runs

package store

import (
	"database/sql"
	"fmt"
)

func (db *database) insertRun(run *Run) error {
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, corpus, vocab_size, min_frequency, pretokenizer, output, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Corpus, run.VocabSize, run.MinFrequency, run.Pretokenizer, run.Output, string(run.Status), run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (db *database) updateRun(run *Run) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = ?, merges = ?, final_vocab_size = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, string(run.Status), run.Merges, run.FinalVocabSize, run.Error, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (db *database) runs() ([]Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, corpus, vocab_size, min_frequency, pretokenizer, output, status,
			merges, final_vocab_size, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var status string
		var finishedAt sql.NullTime
		err := rows.Scan(
			&r.ID,
			&r.Corpus,
			&r.VocabSize,
			&r.MinFrequency,
			&r.Pretokenizer,
			&r.Output,
			&status,
			&r.Merges,
			&r.FinalVocabSize,
			&r.Error,
			&r.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = RunStatus(status)
		if finishedAt.Valid {
			r.FinishedAt = finishedAt.Time
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
