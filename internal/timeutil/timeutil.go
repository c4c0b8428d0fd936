// Package timeutil provides timestamp parsing and formatting utilities for
// FFmpeg commands.
package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned when a timestamp token matches none of the
// recognized patterns or resolves to a negative value.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// ParseTimestamp converts a timestamp token into canonical seconds.
//
// A plain number is tried first, so "90" always means 90 seconds and is never
// mistaken for an hour or minute field. Clock-style tokens are then matched as
// H:M:S(.f) or M:S(.f), with minutes and seconds limited to 0-59 and hours to
// 0-23. The result is rounded to 4 decimals.
//
// Example:
//
//	ParseTimestamp("90")        // 90
//	ParseTimestamp("2:35")      // 155
//	ParseTimestamp("1:02:03.5") // 3723.5
func ParseTimestamp(token string) (float64, error) {
	if v, err := strconv.ParseFloat(token, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("%w: negative timestamp %q", ErrInvalidTimeFormat, token)
		}
		return Round4(v), nil
	}

	parts := strings.Split(token, ":")

	var hours, minutes int
	var seconds float64
	var err error

	switch len(parts) {
	case 3:
		if hours, err = parseClockField(parts[0], 23); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
		}
		if minutes, err = parseClockField(parts[1], 59); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
		}
		if seconds, err = parseSecondsField(parts[2]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
		}
	case 2:
		if minutes, err = parseClockField(parts[0], 59); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
		}
		if seconds, err = parseSecondsField(parts[1]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, token)
	}

	return Round4(float64(hours)*3600 + float64(minutes)*60 + seconds), nil
}

// parseClockField parses an hour or minute field: 1-2 digits, 0 to max.
func parseClockField(s string, max int) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, fmt.Errorf("field %q out of range", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("field %q not numeric", s)
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v > max {
		return 0, fmt.Errorf("field %q out of range", s)
	}
	return v, nil
}

// parseSecondsField parses the seconds field with an optional fraction.
func parseSecondsField(s string) (float64, error) {
	if s == "" || s[0] == '-' || s[0] == '+' {
		return 0, fmt.Errorf("field %q not numeric", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v >= 60 {
		return 0, fmt.Errorf("field %q out of range", s)
	}
	return v, nil
}

// FormatSeconds converts seconds to HH:MM:SS.MS format for FFmpeg.
//
// Example:
//
//	FormatSeconds(0)      // "00:00:00.00"
//	FormatSeconds(90)     // "00:01:30.00"
//	FormatSeconds(3661)   // "01:01:01.00"
//	FormatSeconds(30.53)  // "00:00:30.53"
func FormatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// CeilEven rounds n up to the nearest even integer. Codec chroma subsampling
// requires even frame dimensions.
func CeilEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// Round4 rounds to 4 decimal places, the precision used for all synthesized
// time values.
func Round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
