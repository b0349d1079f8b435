package series

import (
	"time"

	"meatStreakAPI/internal/eventlog"
)

// Day is one calendar day of the dense series. Logged distinguishes a saved
// entry (including an explicit zero) from a day the user never touched; the
// two render differently even though both can count toward a streak.
type Day struct {
	Date   time.Time `json:"date"`
	Logged bool      `json:"logged"`
	Count  int       `json:"count"`
}

// MeatFree reports whether the day counts toward a meat-free streak. Only a
// logged count above zero breaks a streak; an unlogged day and a confirmed
// zero behave identically here.
func (d Day) MeatFree() bool {
	return !d.Logged || d.Count == 0
}

// Series is the dense daily expansion of an event log, one Day per calendar
// date from the tracking start date through today, in chronological order.
type Series []Day

// Normalize expands a sparse log over [startDate, today], both inclusive.
// Days without an entry become Unlogged (Logged=false, Count=0). Running it
// again with a later today only appends trailing days.
func Normalize(log *eventlog.Log, startDate, today time.Time) Series {
	start := eventlog.Midnight(startDate)
	end := eventlog.Midnight(today)
	if end.Before(start) {
		return nil
	}

	var s Series
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		count, ok := log.Get(d)
		s = append(s, Day{Date: d, Logged: ok, Count: count})
	}
	return s
}

// Last returns the most recent day of the series, or a zero Day for an empty
// series.
func (s Series) Last() (Day, bool) {
	if len(s) == 0 {
		return Day{}, false
	}
	return s[len(s)-1], true
}

// MeatToday reports whether the series ends on a day with a logged count
// above zero, i.e. meat was eaten today.
func (s Series) MeatToday() bool {
	last, ok := s.Last()
	return ok && last.Logged && last.Count > 0
}
