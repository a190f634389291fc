// database_migrations.go - Datenbank-Schema-Migrationen
// Enthält: migrate(), migrateV1ToV2()

package store

import "fmt"

// migrate führt Datenbank-Schema-Migrationen durch
func (db *database) migrate() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	for version < currentSchemaVersion {
		switch version {
		case 1:
			// pretokenizer Spalte zur runs Tabelle hinzufügen
			if err := db.migrateV1ToV2(); err != nil {
				return fmt.Errorf("migrate v1 to v2: %w", err)
			}
			version = 2
		default:
			// Unbekannte Version - auf aktuell setzen
			version = currentSchemaVersion
		}
	}

	return nil
}

// migrateV1ToV2 fügt die pretokenizer Spalte zur runs Tabelle hinzu
func (db *database) migrateV1ToV2() error {
	_, err := db.conn.Exec(`ALTER TABLE runs ADD COLUMN pretokenizer TEXT NOT NULL DEFAULT '';`)
	if err != nil && !duplicateColumnError(err) {
		return fmt.Errorf("add pretokenizer column: %w", err)
	}

	return db.setSchemaVersion(2)
}
