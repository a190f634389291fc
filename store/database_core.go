// database_core.go - Kern-Datenbank-Funktionen
// Enthält: database struct, newDatabase, Close, init, Schema-Version

package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren
)

// currentSchemaVersion definiert die aktuelle Datenbank-Schema-Version.
// Wird bei Schema-Änderungen erhöht, die Migrationen erfordern.
const currentSchemaVersion = 2

// database umhüllt die SQLite-Verbindung.
// SQLite serialisiert Schreiber selbst, WAL-Modus lässt Leser parallel laufen.
type database struct {
	conn *sql.DB
}

// newDatabase erstellt eine neue Datenbankverbindung
func newDatabase(dbPath string) (*database, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &database{conn: conn}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return db, nil
}

// Close schließt die Datenbankverbindung
func (db *database) Close() error {
	_, _ = db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return db.conn.Close()
}

// init initialisiert das Datenbankschema
func (db *database) init() error {
	if _, err := db.conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL DEFAULT %d
	);

	INSERT OR IGNORE INTO meta (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS corpora (
		name TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS counts (
		corpus TEXT NOT NULL,
		word BLOB NOT NULL,
		freq INTEGER NOT NULL,
		PRIMARY KEY (corpus, word),
		FOREIGN KEY (corpus) REFERENCES corpora(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		corpus TEXT NOT NULL DEFAULT '',
		vocab_size INTEGER NOT NULL,
		min_frequency INTEGER NOT NULL,
		pretokenizer TEXT NOT NULL DEFAULT '',
		output TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'running',
		merges INTEGER NOT NULL DEFAULT 0,
		final_vocab_size INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`, currentSchemaVersion)

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Schema-Version prüfen und bei Bedarf migrieren
	if err := db.migrate(); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}

// getSchemaVersion gibt die aktuelle Schema-Version zurück
func (db *database) getSchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT schema_version FROM meta").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}

// setSchemaVersion setzt die Schema-Version
func (db *database) setSchemaVersion(version int) error {
	_, err := db.conn.Exec("UPDATE meta SET schema_version = ?", version)
	if err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// duplicateColumnError prüft ob ein SQLite-Fehler eine doppelte Spalte meldet
func duplicateColumnError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}
