package store

import (
	"context"

	"meatStreakAPI/internal/eventlog"
)

// Store persists one event log per username. Implementations are called
// synchronously at action boundaries (log / remove / bulk / reset), never
// during a pure render.
//
// Load returns an empty log when no data exists for the user yet; a missing
// file or remote lookup miss is first use, not an error. The warnings slice
// carries non-fatal row-level problems (malformed dates and the like) that
// were dropped during decoding.
type Store interface {
	Load(ctx context.Context, username string) (*eventlog.Log, []string, error)
	Save(ctx context.Context, username string, log *eventlog.Log) error
}

// Filename is the per-user CSV name shared by the file and Drive backends.
func Filename(username string) string {
	return "data_" + username + ".csv"
}
