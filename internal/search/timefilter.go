package search

import (
	"fmt"
	"time"

	"github.com/ewhitmore/sessiondex/internal/project"
)

// TimeFilter restricts session listings by age.
type TimeFilter int

const (
	FilterYesterday TimeFilter = iota
	FilterWeek
	FilterMonth
	FilterAll
)

// Label returns the display name of the filter.
func (f TimeFilter) Label() string {
	switch f {
	case FilterYesterday:
		return "Yesterday"
	case FilterWeek:
		return "Week"
	case FilterMonth:
		return "Month"
	default:
		return "All"
	}
}

// Next cycles forward: Yesterday, Week, Month, All, and around.
func (f TimeFilter) Next() TimeFilter {
	switch f {
	case FilterYesterday:
		return FilterWeek
	case FilterWeek:
		return FilterMonth
	case FilterMonth:
		return FilterAll
	default:
		return FilterYesterday
	}
}

// Prev cycles backward, the inverse of Next.
func (f TimeFilter) Prev() TimeFilter {
	switch f {
	case FilterYesterday:
		return FilterAll
	case FilterWeek:
		return FilterYesterday
	case FilterMonth:
		return FilterWeek
	default:
		return FilterMonth
	}
}

// AllTimeFilters returns every filter in cycle order.
func AllTimeFilters() []TimeFilter {
	return []TimeFilter{FilterYesterday, FilterWeek, FilterMonth, FilterAll}
}

// ParseTimeFilter maps a flag value to a filter.
func ParseTimeFilter(s string) (TimeFilter, error) {
	switch s {
	case "yesterday":
		return FilterYesterday, nil
	case "week":
		return FilterWeek, nil
	case "month":
		return FilterMonth, nil
	case "all", "":
		return FilterAll, nil
	}
	return FilterAll, fmt.Errorf("search: unknown time filter %q", s)
}

// maxAge returns the filter's age cutoff, 0 for FilterAll.
func (f TimeFilter) maxAge() time.Duration {
	switch f {
	case FilterYesterday:
		return 24 * time.Hour
	case FilterWeek:
		return 7 * 24 * time.Hour
	case FilterMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// FilterByTime drops sessions older than the filter window relative to
// now. Sessions without a timestamp survive only under FilterAll.
func FilterByTime(sessions []project.SessionInfo, filter TimeFilter, now time.Time) []project.SessionInfo {
	if filter == FilterAll {
		return sessions
	}

	maxAge := filter.maxAge()
	out := make([]project.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		if s.Timestamp.IsZero() {
			continue
		}
		if now.Sub(s.Timestamp) < maxAge {
			out = append(out, s)
		}
	}
	return out
}
