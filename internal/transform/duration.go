package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Working-time units used by tracker time tracking
const (
	HoursPerDay = 8
	DaysPerWeek = 5
)

var unitSeconds = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 3600 * HoursPerDay,
	"w": 3600 * HoursPerDay * DaysPerWeek,
}

// ValidUnit reports whether u names a known duration unit
func ValidUnit(u string) bool {
	_, ok := unitSeconds[normalizeUnit(u)]
	return ok
}

func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	switch u {
	case "sec", "secs", "second", "seconds":
		return "s"
	case "min", "mins", "minute", "minutes":
		return "m"
	case "hour", "hours":
		return "h"
	case "day", "days":
		return "d"
	case "week", "weeks":
		return "w"
	}
	return u
}

// ConvertDuration converts value between units. The value may be a plain
// number in the from unit or a tracker duration such as "1w 2d 3h 30m".
// An empty value stays empty.
func ConvertDuration(value, from, to string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	fromFactor, ok := unitSeconds[normalizeUnit(from)]
	if !ok {
		return "", fmt.Errorf("unknown duration unit %q", from)
	}
	toFactor, ok := unitSeconds[normalizeUnit(to)]
	if !ok {
		return "", fmt.Errorf("unknown duration unit %q", to)
	}

	var seconds float64
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		seconds = n * fromFactor
	} else {
		s, err := parseTrackerDuration(value)
		if err != nil {
			return "", err
		}
		seconds = s
	}

	return strconv.FormatFloat(seconds/toFactor, 'f', -1, 64), nil
}

// parseTrackerDuration reads "1w 2d 3h 30m 10s" into seconds
func parseTrackerDuration(value string) (float64, error) {
	var total float64
	parts := strings.Fields(value)
	for _, p := range parts {
		if len(p) < 2 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		factor, ok := unitSeconds[strings.ToLower(p[len(p)-1:])]
		if !ok {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		n, err := strconv.ParseFloat(p[:len(p)-1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		total += n * factor
	}
	return total, nil
}
