package utils

import "time"

// Calendar helpers for billing-period arithmetic. Every comparison that
// decides what month a lease owes works on month-normalized UTC dates;
// day-of-month and wall-clock time never participate unless a function
// says so explicitly.

// StartOfMonthUTC returns day 1 of t's month at midnight UTC.
func StartOfMonthUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonthsUTC shifts t by n whole months in UTC. When t is a period
// pointer it should already be month-aligned; the result then stays
// month-aligned because day 1 exists in every month.
func AddMonthsUTC(t time.Time, n int) time.Time {
	return t.UTC().AddDate(0, n, 0)
}

// DateOnlyUTC strips the time-of-day component, keeping the UTC calendar day.
func DateOnlyUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats t as YYYY-MM-DD in UTC.
func ToISODate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// IsAfterMonth reports whether a falls in a strictly later calendar month
// than b, ignoring day-of-month entirely.
func IsAfterMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	if au.Year() != bu.Year() {
		return au.Year() > bu.Year()
	}
	return au.Month() > bu.Month()
}

// IsBeforeMonth reports whether a falls in a strictly earlier calendar
// month than b.
func IsBeforeMonth(a, b time.Time) bool {
	return IsAfterMonth(b, a)
}

// SameMonth reports whether a and b fall in the same (year, month).
func SameMonth(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.Month() == bu.Month()
}

// ParseISODate parses a YYYY-MM-DD string as a UTC date. The boolean is
// false when the input cannot be parsed; callers must check before use.
func ParseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
