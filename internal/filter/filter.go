// Package filter narrows a day's assemblies down to the ones a reader cares about.
//
// Criteria combine with AND; within one criterion any listed value may match:
//   - Places (substring of any route token, spacing and width ignored)
//   - Districts (named in the notes, directly or through the police station)
//   - A time window the assembly must overlap
//   - Jongno-gu only
//   - A minimum reported headcount
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Places = []string{"광화문"}
//	f.From, f.To = "12:00", "18:00"
//	afternoon := f.Apply(batch.Records)
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/region"
)

// Filter represents assembly filtering criteria
type Filter struct {
	Places    []string `json:"places,omitempty"`
	Districts []string `json:"districts,omitempty"`

	// Time window as "HH:MM"; either end may be empty
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	JongnoOnly   bool `json:"jongno_only,omitempty"`
	MinHeadcount int  `json:"min_headcount,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all records until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Places:    []string{},
		Districts: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return len(f.Places) == 0 &&
		len(f.Districts) == 0 &&
		f.From == "" &&
		f.To == "" &&
		!f.JongnoOnly &&
		f.MinHeadcount == 0
}

// Matches checks if a record matches all active filter criteria.
//
// Matching logic:
//   - Places: some location contains some place, compared in canonical form
//   - Districts: the notes resolve to one of the districts
//   - From/To: the record's time range overlaps the window; records without a
//     readable start time never match a window
//   - JongnoOnly: region.InJongno
//   - MinHeadcount: the reported headcount is at least this; unknown counts fail
func (f *Filter) Matches(rec *assembly.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Places) > 0 && !matchesPlace(rec, f.Places) {
		return false
	}

	if len(f.Districts) > 0 {
		district := region.District(rec.Notes)
		matched := false
		for _, d := range f.Districts {
			if district != "" && district == strings.TrimSpace(d) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if (f.From != "" || f.To != "") && !f.overlaps(rec) {
		return false
	}

	if f.JongnoOnly && !region.InJongno(rec) {
		return false
	}

	if f.MinHeadcount > 0 {
		n, ok := Headcount(rec.Headcount)
		if !ok || n < f.MinHeadcount {
			return false
		}
	}

	return true
}

// Apply returns the matching records. An empty filter returns the list unchanged.
func (f *Filter) Apply(records []*assembly.Record) []*assembly.Record {
	if f.IsEmpty() {
		return records
	}
	return assembly.Filter(records, f.Matches)
}

// String describes the active criteria for display
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "all assemblies"
	}

	var parts []string
	if len(f.Places) > 0 {
		parts = append(parts, "place: "+strings.Join(f.Places, ", "))
	}
	if len(f.Districts) > 0 {
		parts = append(parts, "district: "+strings.Join(f.Districts, ", "))
	}
	if f.From != "" || f.To != "" {
		parts = append(parts, fmt.Sprintf("time: %s-%s", f.From, f.To))
	}
	if f.JongnoOnly {
		parts = append(parts, "Jongno only")
	}
	if f.MinHeadcount > 0 {
		parts = append(parts, fmt.Sprintf("at least %d people", f.MinHeadcount))
	}
	return strings.Join(parts, "; ")
}

func matchesPlace(rec *assembly.Record, places []string) bool {
	for _, loc := range rec.Locations {
		canon := assembly.CanonicalPlace(loc)
		for _, p := range places {
			if want := assembly.CanonicalPlace(p); want != "" && strings.Contains(canon, want) {
				return true
			}
		}
	}
	return false
}

// overlaps reports whether the record's time range intersects the window.
// A record without an end time is treated as starting and ending at once.
func (f *Filter) overlaps(rec *assembly.Record) bool {
	start, ok := assembly.ClockMinutes(rec.StartTime)
	if !ok {
		return false
	}
	end, ok := assembly.ClockMinutes(rec.EndTime)
	if !ok || end < start {
		end = start
	}

	if from, ok := assembly.ClockMinutes(f.From); ok && end < from {
		return false
	}
	if to, ok := assembly.ClockMinutes(f.To); ok && start > to {
		return false
	}
	return true
}

// Headcount parses a reported headcount such as "1,000"
func Headcount(text string) (int, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
