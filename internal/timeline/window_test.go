package timeline

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", raw, err)
	}
	return d
}

func near(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestWindowForExamples(t *testing.T) {
	anchor := time.Date(2024, 12, 18, 16, 45, 0, 0, time.UTC)
	cases := []struct {
		mode  ViewMode
		start time.Time
		end   time.Time
	}{
		{mode: ModeWeek, start: date(2024, 12, 15), end: date(2024, 12, 28)},
		{mode: ModeMonth, start: date(2024, 12, 1), end: date(2025, 1, 31)},
		{mode: ModeQuarter, start: date(2024, 10, 1), end: date(2025, 3, 31)},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			r, err := WindowFor(anchor, tc.mode)
			if err != nil {
				t.Fatalf("WindowFor() error = %v", err)
			}
			if !r.Start.Equal(tc.start) || !r.End.Equal(tc.end) {
				t.Fatalf("WindowFor() = %s..%s, want %s..%s", r.Start, r.End, tc.start, tc.end)
			}
		})
	}
}

func TestWindowForMonthHandlesLeapFebruary(t *testing.T) {
	r, err := WindowFor(date(2024, 1, 31), ModeMonth)
	if err != nil {
		t.Fatalf("WindowFor() error = %v", err)
	}
	if !r.Start.Equal(date(2024, 1, 1)) || !r.End.Equal(date(2024, 2, 29)) {
		t.Fatalf("unexpected range %s..%s", r.Start, r.End)
	}
	if r.Days() != 60 {
		t.Fatalf("Days() = %d, want 60", r.Days())
	}
}

func TestWindowForSundayAnchorStartsOnItself(t *testing.T) {
	r, err := WindowFor(date(2024, 12, 15), ModeWeek)
	if err != nil {
		t.Fatalf("WindowFor() error = %v", err)
	}
	if !r.Start.Equal(date(2024, 12, 15)) {
		t.Fatalf("unexpected week start %s", r.Start)
	}
}

func TestWindowForLengthInvariants(t *testing.T) {
	quarterStarts := []time.Month{time.January, time.April, time.July, time.October}
	for anchor := date(2023, 1, 1); anchor.Before(date(2027, 1, 1)); anchor = anchor.AddDate(0, 0, 1) {
		week, err := WindowFor(anchor, ModeWeek)
		if err != nil {
			t.Fatalf("WindowFor(week, %s) error = %v", anchor, err)
		}
		if daysBetween(week.Start, week.End) != 13 || week.Start.Weekday() != time.Sunday || !week.Contains(anchor) {
			t.Fatalf("unexpected week window %s..%s for %s", week.Start, week.End, anchor)
		}

		month, err := WindowFor(anchor, ModeMonth)
		if err != nil {
			t.Fatalf("WindowFor(month, %s) error = %v", anchor, err)
		}
		nextMonth := time.Date(anchor.Year(), anchor.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		if month.Start.Day() != 1 || month.Start.Month() != anchor.Month() || !month.End.Equal(nextMonth.AddDate(0, 1, -1)) {
			t.Fatalf("unexpected month window %s..%s for %s", month.Start, month.End, anchor)
		}

		quarter, err := WindowFor(anchor, ModeQuarter)
		if err != nil {
			t.Fatalf("WindowFor(quarter, %s) error = %v", anchor, err)
		}
		if quarter.Start.Day() != 1 || !slices.Contains(quarterStarts, quarter.Start.Month()) {
			t.Fatalf("quarter window for %s starts on %s", anchor, quarter.Start)
		}
		if !quarter.End.Equal(quarter.Start.AddDate(0, 6, -1)) || !quarter.Contains(anchor) {
			t.Fatalf("unexpected quarter window %s..%s for %s", quarter.Start, quarter.End, anchor)
		}
	}
}

func TestWindowForRejectsInvalidMode(t *testing.T) {
	if _, err := WindowFor(date(2024, 12, 18), ViewMode("year")); !errors.Is(err, ErrInvalidViewMode) {
		t.Fatalf("expected ErrInvalidViewMode, got %v", err)
	}
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("  Quarter ")
	if err != nil {
		t.Fatalf("ParseViewMode() error = %v", err)
	}
	if mode != ModeQuarter {
		t.Fatalf("ParseViewMode() = %q, want quarter", mode)
	}
	if _, err := ParseViewMode(""); !errors.Is(err, ErrInvalidViewMode) {
		t.Fatalf("expected ErrInvalidViewMode, got %v", err)
	}
	if got := Modes(); !slices.Equal(got, []ViewMode{ModeWeek, ModeMonth, ModeQuarter}) {
		t.Fatalf("Modes() = %v", got)
	}
}
