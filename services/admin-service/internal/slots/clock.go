package slots

import (
	"fmt"
	"strconv"
	"strings"
)

// All slot arithmetic works on minutes since midnight; clock strings exist
// only at the parse/format boundary.

const minutesPerDay = 24 * 60

// ParseClock parses a 24-hour "HH:MM" string into a minute-of-day.
func ParseClock(s string) (int, error) {
	h, m, err := splitClock(s)
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders a minute-of-day as 24-hour "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Format12Hour renders a minute-of-day as "h:MM AM/PM".
// Hour 0 maps to 12 AM, hour 12 to 12 PM.
func Format12Hour(minute int) string {
	h := minute / 60
	m := minute % 60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, period)
}

// Parse12Hour is the inverse of Format12Hour.
func Parse12Hour(s string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h12, m, err := splitClock(fields[0])
	if err != nil {
		return 0, err
	}
	if h12 < 1 || h12 > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h := h12 % 12
	switch strings.ToUpper(fields[1]) {
	case "AM":
	case "PM":
		h += 12
	default:
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func splitClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return h, m, nil
}
