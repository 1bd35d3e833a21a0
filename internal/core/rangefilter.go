package core

import (
	"strconv"
	"time"
)

// Range selects a trailing time window for filtering and aggregation.
// The vocabulary is closed: a number-of-days token or "all". Anything else
// fails open to "include everything" so ambiguous data never silently
// vanishes from totals.
type Range string

const (
	RangeWeek  Range = "7"
	RangeMonth Range = "30"
	RangeAll   Range = "all"

	// DefaultRange matches the remote service's default query window.
	DefaultRange = RangeMonth
)

// ParseRange maps a query token to a Range, falling back to the default
// for the empty string.
func ParseRange(token string) Range {
	if token == "" {
		return DefaultRange
	}
	return Range(token)
}

// Days returns the trailing window size. ok is false for "all" and for any
// token that is not a positive number.
func (r Range) Days() (int, bool) {
	if r == RangeAll {
		return 0, false
	}
	n, err := strconv.Atoi(string(r))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Cutoff computes the lower bound of the window relative to now using
// calendar arithmetic, so DST-shifted local days stay aligned with the
// local-day grouping of the aggregation engine. ok is false when the range
// imposes no lower bound.
func (r Range) Cutoff(now time.Time) (time.Time, bool) {
	days, ok := r.Days()
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// InRange reports whether the expense falls inside the trailing window.
// Records whose createdAt cannot be parsed are included.
func InRange(e Expense, r Range, now time.Time) bool {
	cutoff, ok := r.Cutoff(now)
	if !ok {
		return true
	}
	t, ok := ParseCreatedAt(e.CreatedAt)
	if !ok {
		return true
	}
	return !t.Before(cutoff)
}

// FilterByRange returns the subset of expenses inside the window,
// preserving order.
func FilterByRange(list []Expense, r Range, now time.Time) []Expense {
	out := make([]Expense, 0, len(list))
	for _, e := range list {
		if InRange(e, r, now) {
			out = append(out, e)
		}
	}
	return out
}
