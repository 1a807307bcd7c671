package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// ErrNoSnapshot is returned when no state was persisted for a filter
var ErrNoSnapshot = errors.New("no snapshot")

// DB is the local cache of the viewer: persisted state snapshots and an
// archive of the activities seen on the live feed.
type DB struct {
	db *sql.DB
}

const (
	//Snapshots
	sqlUpsertSnapshot = `INSERT INTO snapshots(id, filter_key, state_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
                        ON CONFLICT(filter_key) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`
	sqlSelectSnapshotByKey = `SELECT state_json FROM snapshots WHERE filter_key = ?`
)

// Open opens or creates the database at path and runs the migrations.
// ":memory:" gives a private in-memory database.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// every connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(8)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(time.Hour)

		var journalMode string
		if err := sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
			log.Warn("Failed to enable WAL mode", "err", err)
		} else {
			log.Debug("Database journal mode", "mode", journalMode)
		}
	}

	sqlDB.Exec("PRAGMA synchronous = NORMAL")
	sqlDB.Exec("PRAGMA busy_timeout = 5000")
	sqlDB.Exec("PRAGMA temp_store = MEMORY")

	db := &DB{db: sqlDB}
	if err := db.RunMigrations(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// SaveSnapshot stores the serialized state for a filter key, replacing an
// earlier one
func (db *DB) SaveSnapshot(key string, state []byte) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		now := time.Now().UTC()
		_, err := tx.Exec(sqlUpsertSnapshot, uuid.New().String(), key, string(state), now, now)
		return err
	})
}

// ReadSnapshot returns the serialized state stored for key or ErrNoSnapshot
func (db *DB) ReadSnapshot(key string) ([]byte, error) {
	var state string
	err := db.db.QueryRow(sqlSelectSnapshotByKey, key).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return []byte(state), nil
}

// wrapTransaction runs the given function within a transaction. A busy
// database is retried until the timeout.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for {
		tx, err := db.db.BeginTx(ctx, nil)
		if err != nil {
			log.Error("error starting transaction", "err", err)
			return err
		}

		err = f(tx)
		if err == nil {
			err = tx.Commit()
			if err == nil {
				return nil
			}
		} else {
			tx.Rollback()
		}

		if isBusy(err) && ctx.Err() == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		log.Error("error in transaction", "err", err)
		return err
	}
}

func isBusy(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_BUSY
}
