// Modul: store.go
// Beschreibung: Persistente Wort-Häufigkeiten und Trainingsläufe in SQLite.
// Enthaelt Store, ensureDB und die öffentlichen Operationen.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/7blacky7/bytebpe/tokenizer"
)

type Store struct {
	// DBPath is the sqlite file. It is created on first use.
	DBPath string

	// dbMu protects database initialization only
	dbMu sync.Mutex
	db   *database
}

// Corpus describes a named set of word counts.
type Corpus struct {
	Name      string
	Words     int
	Total     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunFinished RunStatus = "finished"
	RunFailed   RunStatus = "failed"
)

// Run is one recorded training run.
type Run struct {
	ID             string
	Corpus         string
	VocabSize      int
	MinFrequency   int
	Pretokenizer   string
	Output         string
	Status         RunStatus
	Merges         int
	FinalVocabSize int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}

func (s *Store) ensureDB() error {
	// Fast path: check if db is already initialized
	if s.db != nil {
		return nil
	}

	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.DBPath == "" {
		return fmt.Errorf("open database: no path set")
	}

	if dir := filepath.Dir(s.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	database, err := newDatabase(s.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	s.db = database
	return nil
}

// Close closes the database if it was opened.
func (s *Store) Close() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveCounts stores counts under name. With merge set, the counts are added
// to what is already stored; otherwise they replace it.
func (s *Store) SaveCounts(name string, counts tokenizer.WordCounts, merge bool) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.saveCounts(name, counts, merge)
}

// LoadCounts returns the counts stored under name.
func (s *Store) LoadCounts(name string) (tokenizer.WordCounts, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return s.db.loadCounts(name)
}

// Corpora lists the stored corpora.
func (s *Store) Corpora() ([]Corpus, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return s.db.corpora()
}

// DeleteCounts removes a corpus and its counts.
func (s *Store) DeleteCounts(name string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.deleteCorpus(name)
}

// StartRun records a new running training run and fills in its ID and start time.
func (s *Store) StartRun(run *Run) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	u, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	run.ID = u.String()
	run.Status = RunRunning
	run.StartedAt = time.Now().UTC()
	return s.db.insertRun(run)
}

// FinishRun marks a run as finished, or failed if runErr is set.
func (s *Store) FinishRun(run *Run, runErr error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}

	run.Status = RunFinished
	run.Error = ""
	if runErr != nil {
		run.Status = RunFailed
		run.Error = runErr.Error()
	}
	run.FinishedAt = time.Now().UTC()
	return s.db.updateRun(run)
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs() ([]Run, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return s.db.runs()
}
