package assembly

import (
	"strings"
)

// Record represents one scheduled public assembly or police control event
type Record struct {
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Day        int        `json:"day"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	Locations  []string   `json:"locations"`
	Headcount  string     `json:"headcount,omitempty"`
	Latitudes  []*float64 `json:"latitudes"`  // aligned with Locations, nil element = no hit
	Longitudes []*float64 `json:"longitudes"` // aligned with Locations, nil element = no hit
	Notes      string     `json:"notes,omitempty"`
}

// NewRecord creates a Record for the given date and time window
func NewRecord(date Date, start, end string, locations []string) *Record {
	return &Record{
		Year:      date.Year,
		Month:     date.Month,
		Day:       date.Day,
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
		Locations: locations,
	}
}

// Date returns the calendar date the assembly occurs on
func (r *Record) Date() Date {
	return Date{Year: r.Year, Month: r.Month, Day: r.Day}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	if r.Locations != nil {
		c.Locations = append([]string(nil), r.Locations...)
	}
	c.Latitudes = cloneCoords(r.Latitudes)
	c.Longitudes = cloneCoords(r.Longitudes)
	return &c
}

func cloneCoords(in []*float64) []*float64 {
	if in == nil {
		return nil
	}
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			f := *v
			out[i] = &f
		}
	}
	return out
}

// HasCoordinates reports whether at least one location was geocoded
func (r *Record) HasCoordinates() bool {
	return !coordsEmpty(r.Latitudes) && !coordsEmpty(r.Longitudes)
}

// Sanitize drops coordinate lists whose length does not match Locations.
// Returns true if anything was dropped.
func (r *Record) Sanitize() bool {
	dropped := false
	if len(r.Latitudes) > 0 && len(r.Latitudes) != len(r.Locations) {
		dropped = true
	}
	if len(r.Longitudes) > 0 && len(r.Longitudes) != len(r.Locations) {
		dropped = true
	}
	if dropped {
		r.Latitudes = nil
		r.Longitudes = nil
	}
	return dropped
}

// Route joins the locations into a single human-readable route
func (r *Record) Route(sep string) string {
	return strings.Join(r.Locations, sep)
}

// coordsEmpty treats a list of only nil entries as empty: every lookup missed
func coordsEmpty(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return false
		}
	}
	return true
}

// Float returns a pointer to f, for building coordinate lists
func Float(f float64) *float64 {
	return &f
}
