package assembly

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Columns is the fixed column set of a persisted snapshot, in file order
var Columns = []string{
	"year", "month", "day",
	"start_time", "end_time",
	"locations", "headcount",
	"latitudes", "longitudes",
	"notes",
}

// legacyColumns maps the Korean headers written by earlier collectors to Columns
var legacyColumns = map[string]string{
	"년":  "year",
	"월":  "month",
	"일":  "day",
	"장소": "locations",
	"인원": "headcount",
	"위도": "latitudes",
	"경도": "longitudes",
	"비고": "notes",
}

// CanonicalColumn maps a header cell to its column name, accepting legacy headers.
// Returns "" for unknown headers.
func CanonicalColumn(header string) string {
	h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if name, ok := legacyColumns[h]; ok {
		return name
	}
	for _, c := range Columns {
		if strings.EqualFold(h, c) {
			return c
		}
	}
	return ""
}

// FieldError describes a malformed field that was treated as empty on decode
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: malformed value %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// EncodeStrings renders a list as a JSON array; an empty list is empty text
func EncodeStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeStrings parses a JSON array of strings.
// A bare non-JSON string is read as a single-element list.
func DecodeStrings(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if !strings.HasPrefix(text, "[") {
		return []string{text}, nil
	}

	var raw []interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	values := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				values = append(values, s)
			}
		case float64:
			values = append(values, strconv.FormatFloat(v, 'f', -1, 64))
		case nil:
			// skip
		default:
			return nil, fmt.Errorf("unexpected element %v", v)
		}
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// EncodeCoords renders coordinates as a JSON array with null for misses
func EncodeCoords(values []*float64) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

// DecodeCoords parses a JSON array of numbers, numeric strings and nulls
func DecodeCoords(text string) ([]*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	var raw []interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	values := make([]*float64, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case float64:
			values[i] = Float(v)
		case string:
			s := strings.TrimSpace(v)
			if s == "" || s == "null" || s == "None" {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			values[i] = Float(f)
		case nil:
			// miss
		default:
			return nil, fmt.Errorf("element %d: unexpected value %v", i, v)
		}
	}
	return values, nil
}

// Row renders the record as column name → text
func (r *Record) Row() map[string]string {
	return map[string]string{
		"year":       strconv.Itoa(r.Year),
		"month":      fmt.Sprintf("%02d", r.Month),
		"day":        fmt.Sprintf("%02d", r.Day),
		"start_time": r.StartTime,
		"end_time":   r.EndTime,
		"locations":  EncodeStrings(r.Locations),
		"headcount":  r.Headcount,
		"latitudes":  EncodeCoords(r.Latitudes),
		"longitudes": EncodeCoords(r.Longitudes),
		"notes":      r.Notes,
	}
}

// Values renders the record in Columns order
func (r *Record) Values() []string {
	row := r.Row()
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = row[c]
	}
	return out
}

// FromRow builds a record from column name → text.
// Malformed list fields are left empty and reported; the record is always returned.
// Coordinates that do not line up with the locations are dropped and reported.
func FromRow(row map[string]string) (*Record, []error) {
	var errs []error

	r := &Record{
		StartTime: strings.TrimSpace(row["start_time"]),
		EndTime:   strings.TrimSpace(row["end_time"]),
		Headcount: strings.TrimSpace(row["headcount"]),
		Notes:     strings.TrimSpace(row["notes"]),
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"year", &r.Year},
		{"month", &r.Month},
		{"day", &r.Day},
	} {
		text := strings.TrimSpace(row[f.name])
		n, err := strconv.Atoi(text)
		if err != nil {
			errs = append(errs, &FieldError{Field: f.name, Value: text, Err: err})
			continue
		}
		*f.dst = n
	}

	locations, err := DecodeStrings(row["locations"])
	if err != nil {
		errs = append(errs, &FieldError{Field: "locations", Value: row["locations"], Err: err})
	}
	r.Locations = locations

	lats, err := DecodeCoords(row["latitudes"])
	if err != nil {
		errs = append(errs, &FieldError{Field: "latitudes", Value: row["latitudes"], Err: err})
	}
	r.Latitudes = lats

	lons, err := DecodeCoords(row["longitudes"])
	if err != nil {
		errs = append(errs, &FieldError{Field: "longitudes", Value: row["longitudes"], Err: err})
	}
	r.Longitudes = lons

	if r.Sanitize() {
		errs = append(errs, &FieldError{
			Field: "latitudes/longitudes",
			Value: row["latitudes"] + " " + row["longitudes"],
			Err:   fmt.Errorf("coordinates do not match %d locations", len(r.Locations)),
		})
	}

	return r, errs
}
