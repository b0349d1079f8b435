package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"meatStreakAPI/internal/eventlog"
)

// FileStore keeps one data_<username>.csv per user under a local directory.
// This is the default backend.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(username string) string {
	return filepath.Join(s.dir, Filename(username))
}

func (s *FileStore) Load(_ context.Context, username string) (*eventlog.Log, []string, error) {
	data, err := os.ReadFile(s.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return eventlog.NewLog(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read log for %s: %w", username, err)
	}

	log, warnings, err := eventlog.DecodeCSV(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode log for %s: %w", username, err)
	}
	return log, warnings, nil
}

func (s *FileStore) Save(_ context.Context, username string, log *eventlog.Log) error {
	data, err := eventlog.EncodeCSV(log)
	if err != nil {
		return fmt.Errorf("failed to encode log for %s: %w", username, err)
	}
	if err := os.WriteFile(s.path(username), data, 0o644); err != nil {
		return fmt.Errorf("failed to write log for %s: %w", username, err)
	}
	return nil
}
