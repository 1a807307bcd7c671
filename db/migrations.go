package db

import (
	"database/sql"

	"github.com/charmbracelet/log"
)

const (
	// Persisted state per filter, used to seed the next start
	sqlCreateSnapshotsTable = `CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT NOT NULL PRIMARY KEY,
		filter_key TEXT UNIQUE NOT NULL,
		state_json TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	// Archive of activities seen on the live feed
	sqlCreateActivitiesTable = `CREATE TABLE IF NOT EXISTS activities (
		id TEXT NOT NULL PRIMARY KEY,
		activity_id TEXT UNIQUE NOT NULL,
		verb TEXT NOT NULL,
		actor TEXT,
		published_at INTEGER NOT NULL,
		raw_json TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateActivitiesIndices = `
		CREATE INDEX IF NOT EXISTS idx_activities_published_at ON activities(published_at DESC);
	`
)

// RunMigrations executes all database migrations
func (db *DB) RunMigrations() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		if err := db.createTableIfNotExists(tx, sqlCreateSnapshotsTable, "snapshots"); err != nil {
			return err
		}
		if err := db.createTableIfNotExists(tx, sqlCreateActivitiesTable, "activities"); err != nil {
			return err
		}

		if _, err := tx.Exec(sqlCreateActivitiesIndices); err != nil {
			log.Warn("Failed to create activities indices", "err", err)
		}

		return nil
	})
}

func (db *DB) createTableIfNotExists(tx *sql.Tx, createSQL string, tableName string) error {
	_, err := tx.Exec(createSQL)
	if err != nil {
		log.Error("Error creating table", "table", tableName, "err", err)
		return err
	}
	log.Debug("Table created or already exists", "table", tableName)
	return nil
}
