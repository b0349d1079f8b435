package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"meatStreakAPI/handlers"
	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/internal/store"
	"meatStreakAPI/middleware"
	"meatStreakAPI/services"
)

// TestStartDate matches the tracker's default start of tracking.
const TestStartDate = "2025-02-10"

// SetupTestTracker builds a tracker service over a file store in a temp dir
// with a frozen clock, plus the dir so tests can seed or inspect CSVs.
func SetupTestTracker(t *testing.T, today string) (*services.TrackerService, string) {
	t.Helper()

	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	startDate, err := time.ParseInLocation(eventlog.ISODate, TestStartDate, time.Local)
	if err != nil {
		t.Fatalf("Failed to parse start date: %v", err)
	}
	todayDate, err := time.ParseInLocation(eventlog.ISODate, today, time.Local)
	if err != nil {
		t.Fatalf("Failed to parse today %q: %v", today, err)
	}

	svc := services.NewTrackerService(fs, startDate)
	svc.SetClock(func() time.Time { return todayDate })
	return svc, dir
}

// NewTestRouter wires the tracker routes the way main.go does, including the
// username middleware, so integration tests exercise the real request path.
func NewTestRouter(svc *services.TrackerService) *mux.Router {
	trackerHandler := handlers.NewTrackerHandler(svc)

	r := mux.NewRouter()
	tracker := r.PathPrefix("/api/v1/tracker").Subrouter()
	tracker.Use(middleware.UsernameMiddleware)

	tracker.HandleFunc("/log", trackerHandler.LogDay).Methods("POST")
	tracker.HandleFunc("/log", trackerHandler.RemoveDay).Methods("DELETE")
	tracker.HandleFunc("/bulk", trackerHandler.BulkUpdate).Methods("POST")
	tracker.HandleFunc("/reset", trackerHandler.Reset).Methods("POST")
	tracker.HandleFunc("/dashboard", trackerHandler.GetDashboard).Methods("GET")
	tracker.HandleFunc("/stats", trackerHandler.GetStats).Methods("GET")
	tracker.HandleFunc("/calendar", trackerHandler.GetCalendar).Methods("GET")
	tracker.HandleFunc("/export", trackerHandler.ExportCSV).Methods("GET")
	return r
}

// SeedLegacyCSV writes an old-format file (no count column, one row per
// event) for a username.
func SeedLegacyCSV(t *testing.T, dir, username string, dates []string) {
	t.Helper()

	content := "date\n"
	for _, d := range dates {
		content += d + "\n"
	}
	path := filepath.Join(dir, fmt.Sprintf("data_%s.csv", username))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to seed legacy csv: %v", err)
	}
}
