package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatStreakAPI/internal/eventlog"
	"meatStreakAPI/internal/series"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(eventlog.ISODate, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEmptySeries(t *testing.T) {
	st := Compute(nil)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 0, st.Longest)
}

func TestFirstDayNoEntries(t *testing.T) {
	// Day one of tracking, nothing logged yet: the single unlogged day
	// already counts as a one-day streak.
	s := series.Normalize(eventlog.NewLog(), day("2025-02-10"), day("2025-02-10"))
	st := Compute(s)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, 1, st.Longest)
}

func TestSingleMeatDay(t *testing.T) {
	l := eventlog.NewLog()
	require.NoError(t, l.Upsert(day("2025-02-10"), 1))

	st := Compute(series.Normalize(l, day("2025-02-10"), day("2025-02-10")))
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 0, st.Longest)
}

func TestTenLoggedZeroDays(t *testing.T) {
	l := eventlog.NewLog()
	for d := day("2025-02-10"); !d.After(day("2025-02-19")); d = d.AddDate(0, 0, 1) {
		require.NoError(t, l.Upsert(d, 0))
	}

	st := Compute(series.Normalize(l, day("2025-02-10"), day("2025-02-19")))
	assert.Equal(t, 10, st.Current)
	assert.Equal(t, 10, st.Longest)
}

func TestMeatTodayResetsCurrentKeepsLongest(t *testing.T) {
	l := eventlog.NewLog()
	for d := day("2025-02-10"); !d.After(day("2025-02-19")); d = d.AddDate(0, 0, 1) {
		require.NoError(t, l.Upsert(d, 0))
	}
	require.NoError(t, l.Upsert(day("2025-02-20"), 2))

	st := Compute(series.Normalize(l, day("2025-02-10"), day("2025-02-20")))
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 10, st.Longest)
}

func TestLoggedZeroAndUnloggedCountIdentically(t *testing.T) {
	// Same calendar shape, one log with explicit zeros, one with nothing.
	zeros := eventlog.NewLog()
	for d := day("2025-02-10"); !d.After(day("2025-02-14")); d = d.AddDate(0, 0, 1) {
		require.NoError(t, zeros.Upsert(d, 0))
	}

	stZeros := Compute(series.Normalize(zeros, day("2025-02-10"), day("2025-02-14")))
	stEmpty := Compute(series.Normalize(eventlog.NewLog(), day("2025-02-10"), day("2025-02-14")))
	assert.Equal(t, stEmpty, stZeros)
}

func TestCurrentStreakCountsOnlyUnbrokenTail(t *testing.T) {
	// Meat on days 1-4 and day 9, gap (unlogged) on days 5-8, today is
	// day 11: the current streak is just the two days after the last meat
	// day, not the gap in the middle.
	l := eventlog.NewLog()
	for d := day("2025-02-10"); !d.After(day("2025-02-13")); d = d.AddDate(0, 0, 1) {
		require.NoError(t, l.Upsert(d, 1))
	}
	require.NoError(t, l.Upsert(day("2025-02-18"), 1))

	st := Compute(series.Normalize(l, day("2025-02-10"), day("2025-02-20")))
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, 4, st.Longest, "the mid-series gap is the longest run")
}

func TestMidSeriesStreakClosedByMeat(t *testing.T) {
	l := eventlog.NewLog()
	require.NoError(t, l.Upsert(day("2025-02-15"), 1))
	require.NoError(t, l.Upsert(day("2025-02-20"), 3))

	st := Compute(series.Normalize(l, day("2025-02-10"), day("2025-02-20")))
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 5, st.Longest)
}

func TestLongestNeverBelowCurrent(t *testing.T) {
	// A handful of deterministic shapes; the invariant must hold for all.
	shapes := [][]int{
		{},
		{0},
		{1},
		{0, 0, 0, 1, 0},
		{1, 1, 1, 1},
		{0, 1, 0, 1, 0, 0, 0},
		{2, 0, 0, 0, 0, 0, 0, 0, 3, 0},
	}
	start := day("2025-02-10")
	for _, shape := range shapes {
		l := eventlog.NewLog()
		for i, count := range shape {
			require.NoError(t, l.Upsert(start.AddDate(0, 0, i), count))
		}
		end := start.AddDate(0, 0, len(shape)-1)
		if len(shape) == 0 {
			end = start
		}
		st := Compute(series.Normalize(l, start, end))
		assert.GreaterOrEqual(t, st.Longest, st.Current, "shape %v", shape)
	}
}
