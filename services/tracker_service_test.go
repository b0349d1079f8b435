package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/middleware"
)

func init() {
	// Registers the counters the service increments.
	middleware.InitPrometheus()
}

// memStore keeps encoded CSVs in memory, so the service tests exercise the
// same codec path as the real backends. failSave simulates a dead store.
type memStore struct {
	files    map[string][]byte
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Load(_ context.Context, username string) (*eventlog.Log, []string, error) {
	data, ok := m.files[username]
	if !ok {
		return eventlog.NewLog(), nil, nil
	}
	return eventlog.DecodeCSV(data)
}

func (m *memStore) Save(_ context.Context, username string, log *eventlog.Log) error {
	if m.failSave {
		return errors.New("store unavailable")
	}
	data, err := eventlog.EncodeCSV(log)
	if err != nil {
		return err
	}
	m.files[username] = data
	return nil
}

func day(s string) time.Time {
	t, err := time.ParseInLocation(eventlog.ISODate, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(store *memStore, today string) *TrackerService {
	svc := NewTrackerService(store, day("2025-02-10"))
	svc.SetClock(func() time.Time { return day(today) })
	return svc
}

func TestDashboardEmptyLog(t *testing.T) {
	svc := newTestService(newMemStore(), "2025-02-10")

	resp, err := svc.Dashboard(context.Background(), "mira")
	require.NoError(t, err, "an empty log is a normal render, not an error")

	assert.Equal(t, 0, resp.CurrentStreak)
	assert.Equal(t, 0, resp.LongestStreak)
	assert.Empty(t, resp.ActiveAchievements)
	assert.Empty(t, resp.ArchivedAchievements)
	assert.Empty(t, resp.Series, "nothing to chart before the first entry")
	assert.Nil(t, resp.SetbackNotice)
}

func TestLogDayPersistsAndRenders(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-12")
	ctx := context.Background()

	resp, err := svc.LogDay(ctx, "mira", day("2025-02-11"), 2)
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "2 meat-eating events")
	assert.Contains(t, store.files, "mira")

	// Upsert, not append: saving the same date again keeps one entry.
	_, err = svc.LogDay(ctx, "mira", day("2025-02-11"), 3)
	require.NoError(t, err)

	logData, _, err := store.Load(ctx, "mira")
	require.NoError(t, err)
	assert.Equal(t, 1, logData.Len())
	count, _ := logData.Get(day("2025-02-11"))
	assert.Equal(t, 3, count)
}

func TestLogDayRejectsOutOfRangeDates(t *testing.T) {
	svc := newTestService(newMemStore(), "2025-02-12")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-09"), 1)
	assert.Error(t, err, "before tracking started")

	_, err = svc.LogDay(ctx, "mira", day("2025-02-13"), 1)
	assert.Error(t, err, "future date")
}

func TestSaveFailureAbortsAction(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	svc := newTestService(store, "2025-02-12")

	resp, err := svc.LogDay(context.Background(), "mira", day("2025-02-11"), 2)
	require.Error(t, err)
	assert.Nil(t, resp, "no success payload when the write failed")
	assert.NotContains(t, store.files, "mira", "nothing persisted")
}

func TestTenDayStreakScenario(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-19")
	ctx := context.Background()

	entries := make([]eventlog.Entry, 0, 10)
	for d := day("2025-02-10"); !d.After(day("2025-02-19")); d = d.AddDate(0, 0, 1) {
		entries = append(entries, eventlog.Entry{Date: d, Count: 0})
	}
	resp, err := svc.BulkUpdate(ctx, "mira", entries)
	require.NoError(t, err)

	assert.Equal(t, 10, resp.CurrentStreak)
	assert.Equal(t, 10, resp.LongestStreak)

	found := false
	for _, a := range resp.ActiveAchievements {
		if a.Label == "10 meat-free days" {
			found = true
		}
	}
	assert.True(t, found, "the 10-day badge is active")
	assert.Nil(t, resp.SetbackNotice)
}

func TestSetbackScenario(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-19")
	ctx := context.Background()

	entries := make([]eventlog.Entry, 0, 10)
	for d := day("2025-02-10"); !d.After(day("2025-02-19")); d = d.AddDate(0, 0, 1) {
		entries = append(entries, eventlog.Entry{Date: d, Count: 0})
	}
	_, err := svc.BulkUpdate(ctx, "mira", entries)
	require.NoError(t, err)

	// Day 11: meat. Current resets, longest survives, badge archived.
	svc.SetClock(func() time.Time { return day("2025-02-20") })
	resp, err := svc.LogDay(ctx, "mira", day("2025-02-20"), 2)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CurrentStreak)
	assert.Equal(t, 10, resp.LongestStreak)
	assert.Empty(t, resp.ActiveAchievements)
	require.NotNil(t, resp.SetbackNotice)

	archived := make([]string, 0)
	for _, a := range resp.ArchivedAchievements {
		archived = append(archived, a.Label)
	}
	assert.Contains(t, archived, "10 meat-free days")

	// Next day, no meat: the badge comes back.
	svc.SetClock(func() time.Time { return day("2025-02-21") })
	resp, err = svc.Dashboard(ctx, "mira")
	require.NoError(t, err)

	active := make([]string, 0)
	for _, a := range resp.ActiveAchievements {
		active = append(active, a.Label)
	}
	assert.Contains(t, active, "10 meat-free days")
	assert.Empty(t, resp.ArchivedAchievements)
}

func TestRemoveDay(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-12")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-11"), 2)
	require.NoError(t, err)

	_, err = svc.RemoveDay(ctx, "mira", day("2025-02-11"))
	require.NoError(t, err)

	logData, _, err := store.Load(ctx, "mira")
	require.NoError(t, err)
	assert.Equal(t, 0, logData.Len())

	_, err = svc.RemoveDay(ctx, "mira", day("2025-02-11"))
	assert.Error(t, err, "removing a missing entry reports not found")
}

func TestReset(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-12")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-11"), 2)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "mira"))

	logData, _, err := store.Load(ctx, "mira")
	require.NoError(t, err)
	assert.Equal(t, 0, logData.Len())
}

func TestExportCSVDense(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-13")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-11"), 2)
	require.NoError(t, err)

	data, err := svc.ExportCSV(ctx, "mira")
	require.NoError(t, err)

	expected := "date,count\n" +
		"2025-02-10,0\n" +
		"2025-02-11,2\n" +
		"2025-02-12,0\n" +
		"2025-02-13,0\n"
	assert.Equal(t, expected, string(data), "one ISO row per day from start through today, unlogged as 0")
}

func TestStats(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-19")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-12"), 2)
	require.NoError(t, err)
	_, err = svc.LogDay(ctx, "mira", day("2025-02-18"), 1)
	require.NoError(t, err)

	userStats, err := svc.Stats(ctx, "mira")
	require.NoError(t, err)

	assert.False(t, userStats.TodayStatus)
	assert.Equal(t, 2, userStats.TotalMeatDays)
	assert.Equal(t, 3, userStats.TotalEvents)
	assert.Equal(t, 1, userStats.CurrentStreak)
	assert.Equal(t, 5, userStats.LongestStreak)
	assert.Equal(t, 1, userStats.MeatDaysThisWeek, "only 2025-02-18 falls in the current ISO week")
	assert.Equal(t, 2, userStats.MeatDaysThisMonth)
	assert.Greater(t, userStats.DisciplineScore, 0.0)
}

func TestCalendar(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, "2025-02-19")
	ctx := context.Background()

	_, err := svc.LogDay(ctx, "mira", day("2025-02-12"), 2)
	require.NoError(t, err)

	cal, err := svc.Calendar(ctx, "mira", 2025, 2)
	require.NoError(t, err)

	require.Len(t, cal.Days, 28)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 2, cal.Month)

	twelfth := cal.Days[11]
	assert.True(t, twelfth.Logged)
	assert.Equal(t, 2, twelfth.Count)
	assert.False(t, twelfth.MeatFree)
	assert.True(t, cal.Days[18].IsToday)

	_, err = svc.Calendar(ctx, "mira", 2025, 13)
	assert.Error(t, err)
}
