package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of service dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidClock = errors.New("time must be in HH:MM format")
	ErrNotOnTheHour = errors.New("time must be on the hour")
)

// ParseDate parses a calendar date without any timezone shift
func ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NormalizeDate returns the canonical YYYY-MM-DD form used for storage and lookups
func NormalizeDate(value string) (string, error) {
	d, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// ClockHour returns the integer hour of "HH", "HH:MM" or "HH:MM:SS".
// Minutes and seconds are ignored, so 17:30 yields 17.
func ClockHour(value string) (int, error) {
	hourPart, _, _ := strings.Cut(strings.TrimSpace(value), ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return hour, nil
}

// FormatHour renders an hour as a slot label, e.g. 9 -> "09:00"
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// NormalizeSlotTime turns "10:00" or "10:00:00" into the canonical "10:00" label.
// Times that are not on the hour are rejected.
func NormalizeSlotTime(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", ErrInvalidClock
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 || len(parts[0]) > 2 {
		return "", ErrInvalidClock
	}
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) != 2 || n < 0 || n > 59 {
			return "", ErrInvalidClock
		}
		if n != 0 {
			return "", ErrNotOnTheHour
		}
	}

	return FormatHour(hour), nil
}
