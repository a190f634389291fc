// database_counts.go - Wort-Häufigkeiten speichern und laden
// Enthält: saveCounts, loadCounts, corpora, deleteCorpus

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/7blacky7/bytebpe/tokenizer"
)

var ErrCorpusNotFound = errors.New("corpus not found")

func (db *database) saveCounts(name string, counts tokenizer.WordCounts, merge bool) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO corpora (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
	`, name)
	if err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}

	if !merge {
		if _, err := tx.Exec(`DELETE FROM counts WHERE corpus = ?`, name); err != nil {
			return fmt.Errorf("clear counts: %w", err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO counts (corpus, word, freq) VALUES (?, ?, ?)
		ON CONFLICT(corpus, word) DO UPDATE SET freq = freq + excluded.freq
	`)
	if err != nil {
		return fmt.Errorf("prepare counts insert: %w", err)
	}
	defer stmt.Close()

	for _, word := range counts.Sorted() {
		if _, err := stmt.Exec(name, []byte(word), counts[word]); err != nil {
			return fmt.Errorf("save counts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit counts: %w", err)
	}
	return nil
}

func (db *database) loadCounts(name string) (tokenizer.WordCounts, error) {
	var exists int
	err := db.conn.QueryRow(`SELECT 1 FROM corpora WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}

	rows, err := db.conn.Query(`SELECT word, freq FROM counts WHERE corpus = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(tokenizer.WordCounts)
	for rows.Next() {
		var word []byte
		var freq int
		if err := rows.Scan(&word, &freq); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[string(word)] = freq
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func (db *database) corpora() ([]Corpus, error) {
	rows, err := db.conn.Query(`
		SELECT
			c.name,
			(SELECT COUNT(*) FROM counts w WHERE w.corpus = c.name),
			(SELECT COALESCE(SUM(w.freq), 0) FROM counts w WHERE w.corpus = c.name),
			c.created_at,
			c.updated_at
		FROM corpora c
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query corpora: %w", err)
	}
	defer rows.Close()

	var out []Corpus
	for rows.Next() {
		var c Corpus
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&c.Name, &c.Words, &c.Total, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan corpus: %w", err)
		}
		c.CreatedAt = createdAt
		c.UpdatedAt = updatedAt
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpora: %w", err)
	}
	return out, nil
}

func (db *database) deleteCorpus(name string) error {
	res, err := db.conn.Exec(`DELETE FROM corpora WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete corpus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrCorpusNotFound, name)
	}
	return nil
}
