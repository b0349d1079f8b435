package eventlog

import (
	"fmt"
	"sort"
	"time"
)

// Entry is one logged day: a midnight-normalized date and how many
// meat-eating events were recorded for it. A count of zero is an explicit
// "confirmed meat-free" record, which is not the same as having no entry.
type Entry struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Log holds a single user's event log. At most one entry exists per calendar
// date; saving a date replaces whatever was there before.
type Log struct {
	entries map[string]Entry
}

func NewLog() *Log {
	return &Log{entries: make(map[string]Entry)}
}

// Midnight drops the time-of-day portion, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Upsert records count events for the given date, replacing any prior entry.
func (l *Log) Upsert(date time.Time, count int) error {
	if count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", count)
	}
	day := Midnight(date)
	l.entries[dateKey(day)] = Entry{Date: day, Count: count}
	return nil
}

// Add increments the count for the given date by delta, creating the entry
// if needed. Used by the legacy one-row-per-event load path.
func (l *Log) Add(date time.Time, delta int) {
	day := Midnight(date)
	key := dateKey(day)
	e := l.entries[key]
	e.Date = day
	e.Count += delta
	l.entries[key] = e
}

// Remove deletes the entry for the given date, reporting whether one existed.
func (l *Log) Remove(date time.Time) bool {
	key := dateKey(Midnight(date))
	_, ok := l.entries[key]
	delete(l.entries, key)
	return ok
}

// Get returns the logged count for a date and whether an entry exists.
func (l *Log) Get(date time.Time) (int, bool) {
	e, ok := l.entries[dateKey(Midnight(date))]
	return e.Count, ok
}

func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns the log as a date-ordered slice.
func (l *Log) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
