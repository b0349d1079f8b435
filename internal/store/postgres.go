package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"meatStreakAPI/internal/eventlog"
)

// PostgresStore keeps the logs in a meat_log table, one row per
// (username, date). Save replaces the user's whole log in one transaction so
// a write failure never leaves a half-updated table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the meat_log table on startup if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS meat_log (
		username TEXT NOT NULL,
		date DATE NOT NULL,
		count INT NOT NULL CHECK (count >= 0),
		logged_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (username, date)
	)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create meat_log table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, username string) (*eventlog.Log, []string, error) {
	query := `
	SELECT date, count
	FROM meat_log
	WHERE username = $1
	ORDER BY date
	`

	rows, err := s.db.Query(ctx, query, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load log for %s: %w", username, err)
	}
	defer rows.Close()

	log := eventlog.NewLog()
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, nil, fmt.Errorf("failed to scan log row for %s: %w", username, err)
		}
		if err := log.Upsert(date, count); err != nil {
			return nil, nil, fmt.Errorf("invalid log row for %s: %w", username, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read log rows for %s: %w", username, err)
	}

	return log, nil, nil
}

func (s *PostgresStore) Save(ctx context.Context, username string, log *eventlog.Log) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin save for %s: %w", username, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM meat_log WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to clear log for %s: %w", username, err)
	}

	insert := `
	INSERT INTO meat_log (username, date, count, logged_at)
	VALUES ($1, $2, $3, NOW())
	`
	for _, e := range log.Entries() {
		if _, err := tx.Exec(ctx, insert, username, e.Date, e.Count); err != nil {
			return fmt.Errorf("failed to save entry %s for %s: %w", e.Date.Format(eventlog.ISODate), username, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit save for %s: %w", username, err)
	}
	return nil
}
