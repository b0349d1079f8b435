package achievement

import (
	"fmt"
	"sort"
	"time"

	"meatStreakAPI/internal/series"
)

type CriteriaType string

const (
	CriteriaStreak        CriteriaType = "streak"
	CriteriaMeatFreeWeeks CriteriaType = "meat_free_weeks"
)

// Achievement is a badge derived from the daily series. Badges are ephemeral
// values recomputed on every render; only the archived-label memory lives in
// the session (see State).
type Achievement struct {
	CriteriaType  CriteriaType `json:"criteria_type"`
	CriteriaValue int          `json:"criteria_value"`
	Label         string       `json:"label"`
}

// streakThresholds is the ascending badge table in days. Only the highest
// threshold reached is ever emitted; the lower ones are implied by it.
var streakThresholds = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 150, 200, 250}

// State is the per-session achievement memory: the labels archived by a
// setback, kept until the badge is re-earned. It is passed into and returned
// from Compute rather than held in package state, and it does not survive a
// process restart.
type State struct {
	Archived map[string]Achievement
}

func NewState() State {
	return State{Archived: make(map[string]Achievement)}
}

// Result is one render's achievement outcome. Active and Archived are
// disjoint by label.
type Result struct {
	Active   []Achievement
	Archived []Achievement
	Setback  bool
}

// Compute derives the badge sets for one render.
//
// When meat was eaten today, every badge that would otherwise be active is
// moved into the archived set (deduplicated by label) and the active set is
// cleared: that is the setback. Otherwise any archived label that shows up
// among the freshly earned badges is promoted back to active.
func Compute(s series.Series, longestStreak int, prior State) (Result, State) {
	earned := earnedBadges(s, longestStreak)

	next := NewState()
	for label, a := range prior.Archived {
		next.Archived[label] = a
	}

	res := Result{Setback: s.MeatToday()}
	if res.Setback {
		for _, a := range earned {
			next.Archived[a.Label] = a
		}
	} else {
		for _, a := range earned {
			delete(next.Archived, a.Label)
		}
		res.Active = earned
	}

	for _, a := range next.Archived {
		res.Archived = append(res.Archived, a)
	}
	sort.Slice(res.Archived, func(i, j int) bool { return res.Archived[i].Label < res.Archived[j].Label })

	return res, next
}

func earnedBadges(s series.Series, longestStreak int) []Achievement {
	var earned []Achievement

	best := 0
	for _, th := range streakThresholds {
		if th <= longestStreak {
			best = th
		}
	}
	if best > 0 {
		earned = append(earned, Achievement{
			CriteriaType:  CriteriaStreak,
			CriteriaValue: best,
			Label:         fmt.Sprintf("%d meat-free days", best),
		})
	}

	if weeks := MeatFreeWeeks(s); weeks > 0 {
		earned = append(earned, Achievement{
			CriteriaType:  CriteriaMeatFreeWeeks,
			CriteriaValue: weeks,
			Label:         fmt.Sprintf("%d meat-free weeks", weeks),
		})
	}

	return earned
}

// MeatFreeWeeks counts the ISO Monday-Sunday weeks fully covered by the
// series in which every one of the 7 days is meat-free. Partial weeks at the
// edges never qualify.
func MeatFreeWeeks(s series.Series) int {
	type weekKey struct {
		year, week int
	}
	days := make(map[weekKey]int)
	clean := make(map[weekKey]bool)

	for _, day := range s {
		y, w := day.Date.ISOWeek()
		k := weekKey{y, w}
		days[k]++
		if _, seen := clean[k]; !seen {
			clean[k] = true
		}
		if !day.MeatFree() {
			clean[k] = false
		}
	}

	count := 0
	for k, n := range days {
		if n == 7 && clean[k] {
			count++
		}
	}
	return count
}

// WeekStart returns the Monday midnight of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
