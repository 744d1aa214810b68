package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortStored  SortOrder = ""
	SortByTime  SortOrder = "time"
	SortByPlace SortOrder = "place"
)

func parseSortOrder(name string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(name)))
	switch order {
	case SortStored, SortByTime, SortByPlace:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'time' or 'place')", name)
}

// sortRecords sorts records in place; the stored order is kept for SortStored
func sortRecords(records []*assembly.Record, order SortOrder) {
	switch order {
	case SortByTime:
		assembly.SortByTime(records)
	case SortByPlace:
		sort.SliceStable(records, func(i, j int) bool {
			pi, pj := firstPlace(records[i]), firstPlace(records[j])
			if pi != pj {
				return pi < pj
			}
			// If places are equal, sort by start time
			return compareByTime(records[i], records[j])
		})
	}
}

func firstPlace(rec *assembly.Record) string {
	if len(rec.Locations) == 0 {
		return ""
	}
	return assembly.CanonicalPlace(rec.Locations[0])
}

// compareByTime returns true if i starts before j.
// Records without a readable start time go last.
func compareByTime(i, j *assembly.Record) bool {
	ti, okI := assembly.ClockMinutes(i.StartTime)
	tj, okJ := assembly.ClockMinutes(j.StartTime)

	if okI && okJ {
		return ti < tj
	}
	return okI && !okJ
}
