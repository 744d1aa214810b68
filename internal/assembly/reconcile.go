package assembly

import (
	"fmt"
)

// Policy selects how a new batch is combined with the persisted one
type Policy string

const (
	// PolicyMerge keeps every persisted record and fills its empty fields
	PolicyMerge Policy = "merge"
	// PolicyOverwrite replaces the persisted batch with the new one
	PolicyOverwrite Policy = "overwrite"
)

// ParsePolicy validates a policy name
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case PolicyMerge, PolicyOverwrite:
		return Policy(name), nil
	default:
		return "", fmt.Errorf("unknown policy: %s (must be 'merge' or 'overwrite')", name)
	}
}

// FieldChange records one field filled in during a merge
type FieldChange struct {
	Key      Key    `json:"key"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ReconcileResult contains the merged records and what changed
type ReconcileResult struct {
	Records  []*Record
	Retained int // existing records passed through untouched
	Enriched int // existing records with at least one field filled
	Added    int // incoming records with a new identity key
	Changes  []*FieldChange
}

// mergeableField describes one attribute the merge reducer may fill.
// fits, when set, must also hold before src's value is taken.
type mergeableField struct {
	name   string
	empty  func(r *Record) bool
	fits   func(dst, src *Record) bool
	take   func(dst, src *Record)
	format func(r *Record) string
}

// mergeableFields drives the enrichment reducer; one entry per fillable attribute
var mergeableFields = []mergeableField{
	{
		name:   "start_time",
		empty:  func(r *Record) bool { return r.StartTime == "" },
		take:   func(dst, src *Record) { dst.StartTime = src.StartTime },
		format: func(r *Record) string { return r.StartTime },
	},
	{
		name:   "end_time",
		empty:  func(r *Record) bool { return r.EndTime == "" },
		take:   func(dst, src *Record) { dst.EndTime = src.EndTime },
		format: func(r *Record) string { return r.EndTime },
	},
	{
		name:   "locations",
		empty:  func(r *Record) bool { return len(r.Locations) == 0 },
		take:   func(dst, src *Record) { dst.Locations = append([]string(nil), src.Locations...) },
		format: func(r *Record) string { return EncodeStrings(r.Locations) },
	},
	{
		name:   "headcount",
		empty:  func(r *Record) bool { return r.Headcount == "" },
		take:   func(dst, src *Record) { dst.Headcount = src.Headcount },
		format: func(r *Record) string { return r.Headcount },
	},
	{
		name:   "latitudes",
		empty:  func(r *Record) bool { return coordsEmpty(r.Latitudes) },
		fits:   func(dst, src *Record) bool { return len(src.Latitudes) == len(dst.Locations) },
		take:   func(dst, src *Record) { dst.Latitudes = cloneCoords(src.Latitudes) },
		format: func(r *Record) string { return EncodeCoords(r.Latitudes) },
	},
	{
		name:   "longitudes",
		empty:  func(r *Record) bool { return coordsEmpty(r.Longitudes) },
		fits:   func(dst, src *Record) bool { return len(src.Longitudes) == len(dst.Locations) },
		take:   func(dst, src *Record) { dst.Longitudes = cloneCoords(src.Longitudes) },
		format: func(r *Record) string { return EncodeCoords(r.Longitudes) },
	},
	{
		name:   "notes",
		empty:  func(r *Record) bool { return r.Notes == "" },
		take:   func(dst, src *Record) { dst.Notes = src.Notes },
		format: func(r *Record) string { return r.Notes },
	},
}

// enrich fills every empty field of dst from src and returns the fields it filled.
// Populated fields of dst are never overwritten.
func enrich(dst, src *Record) []*FieldChange {
	var changes []*FieldChange
	for _, f := range mergeableFields {
		if f.empty(dst) && !f.empty(src) && (f.fits == nil || f.fits(dst, src)) {
			old := f.format(dst)
			f.take(dst, src)
			changes = append(changes, &FieldChange{
				Key:      dst.IdentityKey(),
				Field:    f.name,
				OldValue: old,
				NewValue: f.format(dst),
			})
		}
	}
	return changes
}

// collapse clones records, drops misaligned coordinates and folds records sharing
// an identity key into the first one. The returned keys are in first-seen order.
func collapse(records []*Record) ([]Key, map[Key]*Record) {
	keys := make([]Key, 0, len(records))
	byKey := make(map[Key]*Record, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		c := rec.Clone()
		c.Sanitize()

		key := c.IdentityKey()
		if first, exists := byKey[key]; exists {
			enrich(first, c)
			continue
		}
		keys = append(keys, key)
		byKey[key] = c
	}

	return keys, byKey
}

// Reconcile combines the persisted records for a date with a newly scraped batch.
//
// Under PolicyOverwrite the result is the incoming batch. Under PolicyMerge every
// existing record is kept in its original order, records seen again are enriched
// field by field (an empty field takes the incoming value, a populated one is kept),
// and records with a new identity key are appended in scrape order.
// Neither input is modified.
func Reconcile(existing, incoming []*Record, policy Policy) *ReconcileResult {
	if policy == PolicyOverwrite {
		result := &ReconcileResult{Records: make([]*Record, 0, len(incoming))}
		for _, rec := range incoming {
			if rec != nil {
				result.Records = append(result.Records, rec.Clone())
			}
		}
		result.Added = len(result.Records)
		return result
	}

	existingKeys, existingByKey := collapse(existing)
	incomingKeys, incomingByKey := collapse(incoming)

	result := &ReconcileResult{
		Records: make([]*Record, 0, len(existingKeys)+len(incomingKeys)),
		Changes: make([]*FieldChange, 0),
	}

	for _, key := range existingKeys {
		rec := existingByKey[key]
		if newer, seen := incomingByKey[key]; seen {
			if changes := enrich(rec, newer); len(changes) > 0 {
				result.Changes = append(result.Changes, changes...)
				result.Enriched++
			} else {
				result.Retained++
			}
		} else {
			result.Retained++
		}
		result.Records = append(result.Records, rec)
	}

	for _, key := range incomingKeys {
		if _, exists := existingByKey[key]; exists {
			continue
		}
		result.Records = append(result.Records, incomingByKey[key])
		result.Added++
	}

	return result
}
