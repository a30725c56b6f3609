// Package isoweek implements the week-based temporal model: ISO-8601 week
// identifiers of the form YYYY-Www, their date ranges, and timezone-aware
// display formatting.
package isoweek

import (
	"fmt"
	"iter"
	"regexp"
	"time"
)

var weekPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Validate reports whether s matches YYYY-Www with a two-digit zero-padded
// week. The week number is not range-checked beyond the pattern.
func Validate(s string) bool {
	return weekPattern.MatchString(s)
}

// parse splits a validated week identifier into year and week number.
func parse(week string) (int, int, error) {
	if !Validate(week) {
		return 0, 0, fmt.Errorf("invalid week format %q, expected YYYY-Www", week)
	}
	var year, num int
	if _, err := fmt.Sscanf(week, "%4d-W%2d", &year, &num); err != nil {
		return 0, 0, fmt.Errorf("invalid week format %q: %w", week, err)
	}
	return year, num, nil
}

// week1Monday returns the Monday of ISO week 1 of year. Week 1 is the week
// containing the year's first Thursday, so Jan 4 always falls inside it.
func week1Monday(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // Monday = 0
	return jan4.AddDate(0, 0, -offset)
}

// DateRange returns the Monday-to-Sunday span of an ISO week, inclusive.
// The start is Monday 00:00:00 UTC, the end Sunday 23:59:59 UTC.
func DateRange(week string) (time.Time, time.Time, error) {
	year, num, err := parse(week)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := week1Monday(year).AddDate(0, 0, (num-1)*7)
	end := start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end, nil
}

// FromDate returns the ISO week identifier of the week containing t.
func FromDate(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Range yields every week identifier from start to end inclusive. The
// sequence is lazy and can be iterated more than once.
//
// Week numbering wraps to W01 of the next year after week 52. Years with a
// 53rd ISO week are not handled; callers relying on W53 should not use
// Range.
func Range(start, end string) (iter.Seq[string], error) {
	if !Validate(start) || !Validate(end) {
		return nil, fmt.Errorf("invalid week range %q..%q", start, end)
	}

	return func(yield func(string) bool) {
		current := start
		for current <= end {
			if !yield(current) {
				return
			}
			year, num, err := parse(current)
			if err != nil {
				return
			}
			if num == 52 {
				current = fmt.Sprintf("%d-W01", year+1)
			} else {
				current = fmt.Sprintf("%d-W%02d", year, num+1)
			}
		}
	}, nil
}

// Truncate shortens s to at most max runes, ellipsized.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
