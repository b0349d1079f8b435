package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"meatStreakAPI/internal/achievement"
	"meatStreakAPI/internal/calendar"
	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/internal/series"
	"meatStreakAPI/internal/session"
	"meatStreakAPI/internal/stats"
	"meatStreakAPI/internal/store"
	"meatStreakAPI/internal/streak"
	"meatStreakAPI/middleware"
	"meatStreakAPI/utils"
)

// SeriesPoint is one day of the dashboard chart data.
type SeriesPoint struct {
	Date   string `json:"date"`
	Logged bool   `json:"logged"`
	Count  int    `json:"count"`
}

// DashboardResponse is the read-only view model one render produces. It is
// recomputed from the persisted log on every call; nothing in it is stored.
type DashboardResponse struct {
	Username             string                    `json:"username"`
	StartDate            string                    `json:"start_date"`
	Today                string                    `json:"today"`
	CurrentStreak        int                       `json:"current_streak"`
	LongestStreak        int                       `json:"longest_streak"`
	ActiveAchievements   []achievement.Achievement `json:"active_achievements"`
	ArchivedAchievements []achievement.Achievement `json:"archived_achievements"`
	Series               []SeriesPoint             `json:"series"`
	SetbackNotice        *string                   `json:"setback_notice,omitempty"`
	Message              string                    `json:"message,omitempty"`
	Warnings             []string                  `json:"warnings,omitempty"`
}

// TrackerService owns the recompute-and-render pass: load the log, apply the
// action, persist, then derive series, streaks and badges. Each call is one
// synchronous pass; a store failure aborts before any persisted state
// changes.
type TrackerService struct {
	store     store.Store
	sessions  *session.Registry
	startDate time.Time
	now       func() time.Time
}

func NewTrackerService(st store.Store, startDate time.Time) *TrackerService {
	return &TrackerService{
		store:     st,
		sessions:  session.NewRegistry(),
		startDate: eventlog.Midnight(startDate),
		now:       time.Now,
	}
}

// SetClock overrides the service's notion of now. Tests only.
func (s *TrackerService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TrackerService) today() time.Time {
	return eventlog.Midnight(s.now())
}

func (s *TrackerService) validateDate(date time.Time) error {
	day := eventlog.Midnight(date)
	if day.Before(s.startDate) {
		return fmt.Errorf("date %s is before tracking started (%s)",
			day.Format(eventlog.ISODate), s.startDate.Format(eventlog.ISODate))
	}
	if day.After(s.today()) {
		return fmt.Errorf("cannot log a future date %s", day.Format(eventlog.ISODate))
	}
	return nil
}

// LogDay upserts one day's event count and persists before rendering.
func (s *TrackerService) LogDay(ctx context.Context, username string, date time.Time, count int) (*DashboardResponse, error) {
	if err := s.validateDate(date); err != nil {
		return nil, err
	}

	logData, warnings, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}
	if err := logData.Upsert(date, count); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, username, logData); err != nil {
		return nil, fmt.Errorf("failed to save log: %w", err)
	}
	middleware.TrackerActionsTotal.WithLabelValues("log").Inc()

	resp := s.render(username, logData, warnings)
	resp.Message = fmt.Sprintf("%d meat-eating events saved for %s", count, eventlog.Midnight(date).Format(eventlog.ISODate))
	return resp, nil
}

// RemoveDay deletes one day's entry, returning the day to the unlogged
// state.
func (s *TrackerService) RemoveDay(ctx context.Context, username string, date time.Time) (*DashboardResponse, error) {
	logData, warnings, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}
	if !logData.Remove(date) {
		return nil, fmt.Errorf("no entry found for %s", eventlog.Midnight(date).Format(eventlog.ISODate))
	}
	if err := s.store.Save(ctx, username, logData); err != nil {
		return nil, fmt.Errorf("failed to save log: %w", err)
	}
	middleware.TrackerActionsTotal.WithLabelValues("remove").Inc()

	resp := s.render(username, logData, warnings)
	resp.Message = fmt.Sprintf("entry for %s removed", eventlog.Midnight(date).Format(eventlog.ISODate))
	return resp, nil
}

// BulkUpdate upserts a batch of entries with a single persist at the end.
// The whole batch is validated first so a bad row aborts before anything is
// written.
func (s *TrackerService) BulkUpdate(ctx context.Context, username string, entries []eventlog.Entry) (*DashboardResponse, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries supplied")
	}
	for _, e := range entries {
		if err := s.validateDate(e.Date); err != nil {
			return nil, err
		}
		if e.Count < 0 {
			return nil, fmt.Errorf("count must be non-negative, got %d for %s", e.Count, e.Date.Format(eventlog.ISODate))
		}
	}

	logData, warnings, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}
	for _, e := range entries {
		if err := logData.Upsert(e.Date, e.Count); err != nil {
			return nil, err
		}
	}
	if err := s.store.Save(ctx, username, logData); err != nil {
		return nil, fmt.Errorf("failed to save log: %w", err)
	}
	middleware.TrackerActionsTotal.WithLabelValues("bulk").Inc()

	resp := s.render(username, logData, warnings)
	resp.Message = fmt.Sprintf("%d entries saved", len(entries))
	return resp, nil
}

// Reset clears the user's log and drops the session's achievement memory,
// the original tracker's "Reset Data" action.
func (s *TrackerService) Reset(ctx context.Context, username string) error {
	if err := s.store.Save(ctx, username, eventlog.NewLog()); err != nil {
		return fmt.Errorf("failed to reset log: %w", err)
	}
	s.sessions.Drop(username)
	middleware.TrackerActionsTotal.WithLabelValues("reset").Inc()
	log.Printf("log reset for user %s", username)
	return nil
}

// Dashboard is a pure render: load and derive, no writes.
func (s *TrackerService) Dashboard(ctx context.Context, username string) (*DashboardResponse, error) {
	logData, warnings, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}
	return s.render(username, logData, warnings), nil
}

// seriesFor expands the log into the dense daily series. An empty log stays
// an empty series: before the first entry there is nothing to chart and both
// streaks are zero, matching the tracker's behavior since the first draft.
func (s *TrackerService) seriesFor(logData *eventlog.Log) series.Series {
	if logData.Len() == 0 {
		return nil
	}
	return series.Normalize(logData, s.startDate, s.today())
}

// render is the one recompute pass every action and view shares.
func (s *TrackerService) render(username string, logData *eventlog.Log, warnings []string) *DashboardResponse {
	today := s.today()
	daily := s.seriesFor(logData)
	st := streak.Compute(daily)

	sess := s.sessions.Get(username)
	result, nextState := achievement.Compute(daily, st.Longest, sess.Achievements)
	sess.Achievements = nextState

	if result.Setback {
		middleware.TrackerSetbacksTotal.Inc()
	}

	points := make([]SeriesPoint, 0, len(daily))
	for _, d := range daily {
		points = append(points, SeriesPoint{
			Date:   d.Date.Format(eventlog.ISODate),
			Logged: d.Logged,
			Count:  d.Count,
		})
	}

	for _, w := range warnings {
		log.Printf("load warning for user %s: %s", username, w)
	}

	resp := &DashboardResponse{
		Username:             username,
		StartDate:            s.startDate.Format(eventlog.ISODate),
		Today:                today.Format(eventlog.ISODate),
		CurrentStreak:        st.Current,
		LongestStreak:        st.Longest,
		ActiveAchievements:   result.Active,
		ArchivedAchievements: result.Archived,
		Series:               points,
		Warnings:             warnings,
	}
	if result.Setback {
		notice := "You ate meat today — your active achievements moved to the archive. Tomorrow is a fresh start."
		resp.SetbackNotice = &notice
	}
	return resp
}

// Stats summarizes the log the way the dashboard's side panel wants it.
func (s *TrackerService) Stats(ctx context.Context, username string) (*stats.UserStats, error) {
	logData, _, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	today := s.today()
	daily := s.seriesFor(logData)
	st := streak.Compute(daily)

	sess := s.sessions.Get(username)
	result, nextState := achievement.Compute(daily, st.Longest, sess.Achievements)
	sess.Achievements = nextState

	weekStart := achievement.WeekStart(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	yearStart := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())

	out := &stats.UserStats{
		TodayStatus:   daily.MeatToday(),
		CurrentStreak: st.Current,
		LongestStreak: st.Longest,
		MeatFreeWeeks: achievement.MeatFreeWeeks(daily),
	}
	meatFreeDays := 0
	for _, d := range daily {
		if d.MeatFree() {
			meatFreeDays++
			continue
		}
		out.TotalMeatDays++
		out.TotalEvents += d.Count
		if !d.Date.Before(weekStart) {
			out.MeatDaysThisWeek++
		}
		if !d.Date.Before(monthStart) {
			out.MeatDaysThisMonth++
		}
		if !d.Date.Before(yearStart) {
			out.MeatDaysThisYear++
		}
	}
	out.AchievementsCount = len(result.Active)
	out.DisciplineScore = utils.CalculateDisciplineScore(st.Current, meatFreeDays, out.AchievementsCount)

	return out, nil
}

// Calendar renders one month as a grid of day states.
func (s *TrackerService) Calendar(ctx context.Context, username string, year, month int) (*calendar.MonthResponse, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	logData, _, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	today := s.today()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, today.Location())

	resp := &calendar.MonthResponse{Year: year, Month: month}
	for d := first; d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		count, logged := logData.Get(d)
		day := &calendar.Day{
			Date:     d,
			Logged:   logged,
			Count:    count,
			MeatFree: !logged || count == 0,
			IsToday:  d.Equal(today),
		}
		resp.Days = append(resp.Days, day)
	}
	return resp, nil
}

// ExportCSV renders the dense series as download rows, one per calendar day
// from the start date through today, ISO dates, unlogged days as zero.
func (s *TrackerService) ExportCSV(ctx context.Context, username string) ([]byte, error) {
	logData, _, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	daily := s.seriesFor(logData)
	dense := eventlog.NewLog()
	for _, d := range daily {
		if err := dense.Upsert(d.Date, d.Count); err != nil {
			return nil, err
		}
	}
	data, err := eventlog.EncodeCSV(dense)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}
