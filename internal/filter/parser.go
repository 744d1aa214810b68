package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

var (
	windowPattern = regexp.MustCompile(`^(\d{1,2}:\d{2})?\s*[-~]\s*(\d{1,2}:\d{2})?$`)
	clockPattern  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseTimeWindow parses a time window string into its "HH:MM" ends.
//
// Supported formats:
//   - "09:00-12:00" or "9:00~12:00" - both ends
//   - "12:00-" - from noon on
//   - "-12:00" - until noon
//   - "14:00" - a single instant
//
// Hours are zero-padded in the result.
func ParseTimeWindow(input string) (string, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", fmt.Errorf("time window cannot be empty")
	}

	if clockPattern.MatchString(input) {
		clock, err := normalizeClock(input)
		if err != nil {
			return "", "", err
		}
		return clock, clock, nil
	}

	m := windowPattern.FindStringSubmatch(input)
	if m == nil || (m[1] == "" && m[2] == "") {
		return "", "", fmt.Errorf("invalid time window: %s (expected HH:MM-HH:MM)", input)
	}

	from, err := normalizeClock(m[1])
	if err != nil {
		return "", "", err
	}
	to, err := normalizeClock(m[2])
	if err != nil {
		return "", "", err
	}

	if from != "" && to != "" {
		f, _ := assembly.ClockMinutes(from)
		t, _ := assembly.ClockMinutes(to)
		if f > t {
			return "", "", fmt.Errorf("start time must be before end time")
		}
	}

	return from, to, nil
}

func normalizeClock(clock string) (string, error) {
	if clock == "" {
		return "", nil
	}
	mins, ok := assembly.ClockMinutes(clock)
	if !ok {
		return "", fmt.Errorf("invalid time: %s", clock)
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60), nil
}
