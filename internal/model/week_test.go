package model

import (
	"errors"
	"testing"
	"time"
)

func TestTodayUsesMondayFirstIndex(t *testing.T) {
	cases := []struct {
		at       time.Time
		wantDay  Weekday
		wantDate string
	}{
		{time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local), Monday, "02.06.2025"},
		{time.Date(2025, 6, 4, 23, 59, 0, 0, time.Local), Wednesday, "04.06.2025"},
		{time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local), Sunday, "08.06.2025"},
	}
	for _, tc := range cases {
		day, date := Today(tc.at)
		if day != tc.wantDay || date != tc.wantDate {
			t.Fatalf("Today(%s) = (%s, %s), want (%s, %s)", tc.at, day, date, tc.wantDay, tc.wantDate)
		}
	}
}

func TestWeekRange(t *testing.T) {
	cases := []struct {
		at         time.Time
		wantMonday string
		wantSunday string
	}{
		{time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local), "02.06.2025", "08.06.2025"},
		{time.Date(2025, 6, 8, 12, 0, 0, 0, time.Local), "02.06.2025", "08.06.2025"},
		{time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local), "30.12.2024", "05.01.2025"},
	}
	for _, tc := range cases {
		monday, sunday := WeekRange(tc.at)
		if monday != tc.wantMonday || sunday != tc.wantSunday {
			t.Fatalf("WeekRange(%s) = (%s, %s), want (%s, %s)", tc.at, monday, sunday, tc.wantMonday, tc.wantSunday)
		}
	}
}

func TestWeekDateFor(t *testing.T) {
	got, err := WeekDateFor(Wednesday, "02.06.2025")
	if err != nil {
		t.Fatalf("week date: %v", err)
	}
	if got != "04.06.2025" {
		t.Fatalf("expected 04.06.2025, got %s", got)
	}

	got, err = WeekDateFor(Sunday, "30.12.2024")
	if err != nil {
		t.Fatalf("week date: %v", err)
	}
	if got != "05.01.2025" {
		t.Fatalf("expected 05.01.2025, got %s", got)
	}

	if _, err := WeekDateFor(Weekday(9), "02.06.2025"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if _, err := WeekDateFor(Monday, "2025-06-02"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates("02.06.2025")
	if err != nil {
		t.Fatalf("week dates: %v", err)
	}
	want := []string{"02.06.2025", "03.06.2025", "04.06.2025", "05.06.2025", "06.06.2025", "07.06.2025", "08.06.2025"}
	if len(dates) != len(want) {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("date %d = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestParseWeekday(t *testing.T) {
	for _, day := range Weekdays() {
		got, err := ParseWeekday(day.Token())
		if err != nil || got != day {
			t.Fatalf("ParseWeekday(%q) = (%v, %v)", day.Token(), got, err)
		}
	}
	if got, err := ParseWeekday(" Wednesday "); err != nil || got != Wednesday {
		t.Fatalf("expected case-insensitive parse, got (%v, %v)", got, err)
	}
	if _, err := ParseWeekday("funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if Wednesday.String() != "Wednesday" {
		t.Fatalf("unexpected String(): %s", Wednesday.String())
	}
}
