// Package calendar validates and formats the day labels printed on the weekly menu page.
//
// A label looks like "Wednesday January 8, 2020". The menu runs for six consecutive
// days starting on Wednesday; Tuesday is the closed day.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinYear is the first year the menu was published.
const MinYear = 2019

// ClosedWeekday is the day after the last menu day. It never appears on the page.
const ClosedWeekday = time.Tuesday

var (
	ErrInvalidWeekday   = errors.New("invalid weekday")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDayNumber = errors.New("invalid day number")
	ErrInvalidYear      = errors.New("invalid year")
	ErrWeekdayIndex     = errors.New("weekday index out of range")
)

// MenuWeek lists the weekdays of one menu, in page order.
var MenuWeek = [6]time.Weekday{
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
	time.Monday,
}

var weekdays = map[string]time.Weekday{}

var months = map[string]time.Month{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays[d.String()] = d
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		months[name] = m
		months[name[:3]] = m
	}
}

// IsWeekday reports whether token is one of the seven canonical weekday names.
func IsWeekday(token string) bool {
	_, ok := weekdays[token]
	return ok
}

// WeekdayToken returns the first whitespace-separated token of a label.
func WeekdayToken(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ExpectedWeekday maps a position on the menu page to its weekday.
func ExpectedWeekday(index int) (time.Weekday, error) {
	if index < 0 || index >= len(MenuWeek) {
		return 0, fmt.Errorf("%w: %d", ErrWeekdayIndex, index)
	}
	return MenuWeek[index], nil
}

type labelParts struct {
	weekday string
	month   string
	day     string
	year    string
}

func splitLabel(label string) labelParts {
	cleaned := strings.NewReplacer(",", " ", ".", " ").Replace(label)
	fields := strings.Fields(cleaned)

	var parts labelParts
	if len(fields) > 0 {
		parts.weekday = fields[0]
	}
	if len(fields) > 1 {
		parts.month = fields[1]
	}
	if len(fields) > 2 {
		parts.day = fields[2]
	}
	if len(fields) > 3 {
		parts.year = strings.Join(fields[3:], " ")
	}
	return parts
}

// Validate checks a label taken from position index of the menu page and returns it in
// canonical form. A wrong weekday name is replaced by the expected one; the date is kept.
func Validate(label string, index int) (string, error) {
	expected, err := ExpectedWeekday(index)
	if err != nil {
		return "", err
	}

	parts := splitLabel(label)
	weekday := expected.String()

	if _, ok := months[parts.month]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, parts.month)
	}

	day, err := strconv.Atoi(parts.day)
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayNumber, parts.day)
	}

	year, err := strconv.Atoi(parts.year)
	if err != nil || year < MinYear {
		return "", fmt.Errorf("%w: %q", ErrInvalidYear, parts.year)
	}

	return fmt.Sprintf("%s %s %d, %d", weekday, parts.month, day, year), nil
}

// Parse converts a label into a UTC calendar date. The weekday name must be a real
// weekday but is not checked against the date.
func Parse(label string) (time.Time, error) {
	parts := splitLabel(label)
	if !IsWeekday(parts.weekday) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekday, parts.weekday)
	}

	month, ok := months[parts.month]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, parts.month)
	}

	year, err := strconv.Atoi(parts.year)
	if err != nil || year < MinYear {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidYear, parts.year)
	}

	day, err := strconv.Atoi(parts.day)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDayNumber, parts.day)
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %s has no day %d", ErrInvalidDayNumber, month, day)
	}
	return date, nil
}

// FormatLabel renders t the way the menu page prints it.
func FormatLabel(t time.Time) string {
	return t.Format("Monday January 2, 2006")
}

// WeekWindow returns the label for the day of t and for the following day.
// ok is false on the closed weekday.
func WeekWindow(t time.Time) (start, end string, ok bool) {
	if t.Weekday() == ClosedWeekday {
		return "", "", false
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return FormatLabel(day), FormatLabel(day.AddDate(0, 0, 1)), true
}
