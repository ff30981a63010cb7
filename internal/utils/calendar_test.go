package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStartOfMonthUTC(t *testing.T) {
	got := StartOfMonthUTC(time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC))
	want := date(2024, time.March, 1)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	nairobi, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	// 01:30 EAT on March 1 is still Feb 29 in UTC.
	local := time.Date(2024, time.March, 1, 1, 30, 0, 0, nairobi)
	got = StartOfMonthUTC(local)
	want = date(2024, time.February, 1)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAddMonthsUTCOverYearBoundary(t *testing.T) {
	got := AddMonthsUTC(date(2024, time.November, 1), 3)
	want := date(2025, time.February, 1)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = AddMonthsUTC(date(2024, time.February, 1), -2)
	want = date(2023, time.December, 1)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMonthComparisons(t *testing.T) {
	march := date(2024, time.March, 31)
	april := date(2024, time.April, 1)

	if !IsAfterMonth(april, march) {
		t.Fatal("April should be after March")
	}
	if IsAfterMonth(march, april) {
		t.Fatal("March should not be after April")
	}
	if !IsBeforeMonth(march, april) {
		t.Fatal("March should be before April")
	}
	if IsAfterMonth(march, date(2024, time.March, 1)) {
		t.Fatal("same month must not compare as after, regardless of day")
	}
	if !SameMonth(march, date(2024, time.March, 1)) {
		t.Fatal("days 1 and 31 of March are the same month")
	}
	if !IsAfterMonth(date(2025, time.January, 1), date(2024, time.December, 31)) {
		t.Fatal("January 2025 should be after December 2024")
	}
}

func TestParseISODate(t *testing.T) {
	got, ok := ParseISODate("2024-06-01")
	if !ok {
		t.Fatal("expected valid date to parse")
	}
	if !got.Equal(date(2024, time.June, 1)) {
		t.Fatalf("unexpected parse result: %v", got)
	}

	if _, ok := ParseISODate("06/01/2024"); ok {
		t.Fatal("expected slash format to be rejected")
	}
	if _, ok := ParseISODate(""); ok {
		t.Fatal("expected empty string to be rejected")
	}
}
