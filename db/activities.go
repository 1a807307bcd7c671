package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
	"github.com/google/uuid"
)

const (
	sqlInsertActivity = `INSERT INTO activities(id, activity_id, verb, actor, published_at, raw_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
                        ON CONFLICT(activity_id) DO NOTHING`
	sqlSelectRecentActivities = `SELECT raw_json FROM activities ORDER BY published_at DESC, created_at DESC LIMIT ?`
	sqlPruneActivities        = `DELETE FROM activities WHERE id NOT IN (SELECT id FROM activities ORDER BY published_at DESC LIMIT ?)`
)

// SaveActivities archives activities. An activity id already stored is
// skipped. It returns how many were new.
func (db *DB) SaveActivities(activities []domain.Activity) (int, error) {
	added := 0
	err := db.wrapTransaction(func(tx *sql.Tx) error {
		added = 0
		now := time.Now().UTC()
		for _, a := range activities {
			raw, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("failed to encode activity %s: %w", a.ID, err)
			}
			res, err := tx.Exec(sqlInsertActivity,
				uuid.New().String(),
				a.ID,
				a.Verb,
				a.ActorName(),
				publishedAt(a.Time),
				string(raw),
				now,
			)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added++
			}
		}
		return nil
	})
	return added, err
}

// publishedAt is the sort key of an archived activity. A missing time sorts
// before every real one.
func publishedAt(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// ReadRecentActivities returns up to limit archived activities, newest first
func (db *DB) ReadRecentActivities(limit int) ([]domain.Activity, error) {
	rows, err := db.db.Query(sqlSelectRecentActivities, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return activities, err
		}
		var a domain.Activity
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			log.Warn("Skipping unreadable archived activity", "err", err)
			continue
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// PruneActivities keeps the newest keep activities
func (db *DB) PruneActivities(keep int) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlPruneActivities, keep)
		return err
	})
}
