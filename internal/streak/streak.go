package streak

import (
	"meatStreakAPI/internal/series"
)

// Streak is derived from the dense series on every render, never stored.
type Streak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// Compute derives the current and longest meat-free streaks from a dense
// daily series. Both use the same day policy: a day counts unless it carries
// a logged count above zero.
//
// Longest scans forward with a running counter that resets on each meat day
// and includes a streak still open at today. Current counts backward from
// the most recent day until the first meat day; it is zero when meat was
// eaten today.
func Compute(s series.Series) Streak {
	var st Streak

	run := 0
	for _, day := range s {
		if day.MeatFree() {
			run++
			if run > st.Longest {
				st.Longest = run
			}
		} else {
			run = 0
		}
	}

	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].MeatFree() {
			break
		}
		st.Current++
	}

	return st
}
