package assembly

import (
	"sort"
)

// Batch is the set of records persisted for one target date
type Batch struct {
	Date    Date
	Records []*Record
}

// NewBatch creates an empty batch for the given date
func NewBatch(date Date) *Batch {
	return &Batch{
		Date:    date,
		Records: make([]*Record, 0),
	}
}

// GroupByDate splits records by the date they occur on.
// Dates are returned in first-seen order and records keep their relative order.
func GroupByDate(records []*Record) []*Batch {
	batches := make([]*Batch, 0)
	index := make(map[Date]*Batch)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		date := rec.Date()
		b, ok := index[date]
		if !ok {
			b = NewBatch(date)
			index[date] = b
			batches = append(batches, b)
		}
		b.Records = append(b.Records, rec)
	}

	return batches
}

// Filter returns the records for which keep returns true
func Filter(records []*Record, keep func(*Record) bool) []*Record {
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// SortByTime orders records by start then end time; unparseable times sort last
func SortByTime(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		si, sj := clockOrLast(records[i].StartTime), clockOrLast(records[j].StartTime)
		if si != sj {
			return si < sj
		}
		return clockOrLast(records[i].EndTime) < clockOrLast(records[j].EndTime)
	})
}

func clockOrLast(clock string) int {
	if mins, ok := ClockMinutes(clock); ok {
		return mins
	}
	return 1 << 20
}
