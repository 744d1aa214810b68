package assembly

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Seoul is the time zone every assembly schedule is published in
var Seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Date identifies the calendar day an assembly occurs on
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf returns the calendar date of t in Seoul time
func DateOf(t time.Time) Date {
	t = t.In(Seoul)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Valid reports whether the date names a real calendar day
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

// At returns the instant for the given "HH:MM" clock time on this date in Seoul.
// The second return value is false if clock cannot be parsed.
func (d Date) At(clock string) (time.Time, bool) {
	mins, ok := ClockMinutes(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, mins/60, mins%60, 0, 0, Seoul), true
}

var (
	dashedDatePattern  = regexp.MustCompile(`(\d{4})[-./](\d{1,2})[-./](\d{1,2})`)
	koreanDatePattern  = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	compactDatePattern = regexp.MustCompile(`(\d{2})(\d{2})(\d{2})`)
)

// ParseDate extracts a date from free text.
// Supports formats: "2025-08-22", "2025.08.22", "2025/8/22", "2025년 8월 22일".
// Returns the zero Date if no date is found.
func ParseDate(text string) Date {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}
	}

	for _, pattern := range []*regexp.Regexp{dashedDatePattern, koreanDatePattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			d := Date{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
			if d.Valid() {
				return d
			}
		}
	}

	return Date{}
}

// ParseCompactDate extracts a YYMMDD date such as "250822" from a post title
// and expands it to the 21st century. Returns the zero Date if none is found.
func ParseCompactDate(text string) Date {
	m := compactDatePattern.FindStringSubmatch(text)
	if m == nil {
		return Date{}
	}
	d := Date{Year: 2000 + atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
	if !d.Valid() {
		return Date{}
	}
	return d
}

// ClockMinutes converts "HH:MM" to minutes after midnight
func ClockMinutes(clock string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(clock), ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || hours < 0 || hours > 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
