package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewhitmore/sessiondex/internal/project"
)

func TestTimeFilterCycle(t *testing.T) {
	assert.Equal(t, FilterWeek, FilterYesterday.Next())
	assert.Equal(t, FilterMonth, FilterWeek.Next())
	assert.Equal(t, FilterAll, FilterMonth.Next())
	assert.Equal(t, FilterYesterday, FilterAll.Next())

	assert.Equal(t, FilterAll, FilterYesterday.Prev())
	assert.Equal(t, FilterYesterday, FilterWeek.Prev())
	assert.Equal(t, FilterWeek, FilterMonth.Prev())
	assert.Equal(t, FilterMonth, FilterAll.Prev())

	for _, f := range AllTimeFilters() {
		assert.Equal(t, f, f.Next().Prev())
		assert.Equal(t, f, f.Prev().Next())
	}
}

func TestTimeFilterLabels(t *testing.T) {
	assert.Equal(t, "Yesterday", FilterYesterday.Label())
	assert.Equal(t, "Week", FilterWeek.Label())
	assert.Equal(t, "Month", FilterMonth.Label())
	assert.Equal(t, "All", FilterAll.Label())
}

func TestParseTimeFilter(t *testing.T) {
	cases := []struct {
		in   string
		want TimeFilter
	}{
		{"yesterday", FilterYesterday},
		{"week", FilterWeek},
		{"month", FilterMonth},
		{"all", FilterAll},
		{"", FilterAll},
	}
	for _, tc := range cases {
		got, err := ParseTimeFilter(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	_, err := ParseTimeFilter("fortnight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnight")
}

func TestFilterByTime(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	sessions := []project.SessionInfo{
		{SessionID: "hour", Timestamp: now.Add(-time.Hour)},
		{SessionID: "days3", Timestamp: now.Add(-3 * 24 * time.Hour)},
		{SessionID: "days20", Timestamp: now.Add(-20 * 24 * time.Hour)},
		{SessionID: "days40", Timestamp: now.Add(-40 * 24 * time.Hour)},
		{SessionID: "undated"},
	}

	ids := func(in []project.SessionInfo) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			out = append(out, s.SessionID)
		}
		return out
	}

	assert.Equal(t, []string{"hour"}, ids(FilterByTime(sessions, FilterYesterday, now)))
	assert.Equal(t, []string{"hour", "days3"}, ids(FilterByTime(sessions, FilterWeek, now)))
	assert.Equal(t, []string{"hour", "days3", "days20"}, ids(FilterByTime(sessions, FilterMonth, now)))
	assert.Equal(t, sessions, FilterByTime(sessions, FilterAll, now))
}

func TestFilterByTimeBoundary(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	sessions := []project.SessionInfo{
		{SessionID: "exact", Timestamp: now.Add(-24 * time.Hour)},
	}

	// The cutoff is strict: a session exactly 24h old has already aged out.
	assert.Empty(t, FilterByTime(sessions, FilterYesterday, now))
	got := FilterByTime(sessions, FilterWeek, now)
	require.Len(t, got, 1)
	assert.Equal(t, "exact", got[0].SessionID)
}
