package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only layout used for date keys (DD.MM.YYYY).
const DateLayout = "02.01.2006"

var (
	ErrInvalidWeekday = errors.New("model: invalid weekday")
	ErrInvalidDate    = errors.New("model: invalid date")
)

// Weekday counts from Monday=0 to Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTokens = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) IsValid() bool {
	return d >= Monday && d <= Sunday
}

// Token is the stable lowercase name used in button payloads.
func (d Weekday) Token() string {
	if !d.IsValid() {
		return ""
	}
	return weekdayTokens[d]
}

func (d Weekday) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return strings.ToUpper(weekdayTokens[d][:1]) + weekdayTokens[d][1:]
}

func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func ParseWeekday(s string) (Weekday, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for i, token := range weekdayTokens {
		if token == needle {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// WeekdayOf converts Go's Sunday-first weekday into the Monday-first index.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Today reports the weekday and date key of now, in now's location.
func Today(now time.Time) (Weekday, string) {
	return WeekdayOf(now), FormatDate(now)
}

// WeekRange returns the Monday and Sunday date keys of the week containing now.
func WeekRange(now time.Time) (string, string) {
	monday := startOfDay(now).AddDate(0, 0, -int(WeekdayOf(now)))
	return FormatDate(monday), FormatDate(monday.AddDate(0, 0, 6))
}

// WeekDateFor maps day onto its date within the week starting at monday.
func WeekDateFor(day Weekday, monday string) (string, error) {
	if !day.IsValid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidWeekday, int(day))
	}
	start, err := ParseDate(monday)
	if err != nil {
		return "", err
	}
	return FormatDate(start.AddDate(0, 0, int(day))), nil
}

// WeekDates lists the seven date keys starting at monday.
func WeekDates(monday string) ([]string, error) {
	start, err := ParseDate(monday)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, FormatDate(start.AddDate(0, 0, i)))
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
