package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"meatStreakAPI/internal/eventlog"
)

// DriveStore keeps the per-user CSVs in a Google Drive folder, for users who
// want their log to follow them across machines. Same file shape as the
// local backend.
type DriveStore struct {
	svc      *drive.Service
	folderID string
}

func NewDriveStore(ctx context.Context, credentialsFile, folderID string) (*DriveStore, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	return &DriveStore{svc: svc, folderID: folderID}, nil
}

// findFile returns the Drive file ID for a username's CSV, or "" when the
// file does not exist yet.
func (s *DriveStore) findFile(ctx context.Context, username string) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		Filename(username), s.folderID)

	list, err := s.svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search drive for %s: %w", username, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (s *DriveStore) Load(ctx context.Context, username string) (*eventlog.Log, []string, error) {
	fileID, err := s.findFile(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if fileID == "" {
		return eventlog.NewLog(), nil, nil
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
			return eventlog.NewLog(), nil, nil
		}
		return nil, nil, fmt.Errorf("failed to download log for %s: %w", username, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read drive response for %s: %w", username, err)
	}

	log, warnings, err := eventlog.DecodeCSV(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode log for %s: %w", username, err)
	}
	return log, warnings, nil
}

func (s *DriveStore) Save(ctx context.Context, username string, log *eventlog.Log) error {
	data, err := eventlog.EncodeCSV(log)
	if err != nil {
		return fmt.Errorf("failed to encode log for %s: %w", username, err)
	}

	fileID, err := s.findFile(ctx, username)
	if err != nil {
		return err
	}

	media := bytes.NewReader(data)
	if fileID == "" {
		_, err = s.svc.Files.Create(&drive.File{
			Name:     Filename(username),
			Parents:  []string{s.folderID},
			MimeType: "text/csv",
		}).Media(media).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to create drive file for %s: %w", username, err)
		}
		return nil
	}

	_, err = s.svc.Files.Update(fileID, &drive.File{}).Media(media).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update drive file for %s: %w", username, err)
	}
	return nil
}
