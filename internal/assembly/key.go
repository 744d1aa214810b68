package assembly

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Key identifies "the same assembly" across runs: date, time window and route
type Key string

// quoteRunes are dropped from place tokens before comparison
const quoteRunes = "\"'“”‘’`·ㆍ∙,，、･"

// CanonicalPlace normalises a place token for comparison.
// Unicode is NFC-composed and width-folded, whitespace and quote marks are
// removed, and "N번출구" is shortened to "N번".
func CanonicalPlace(place string) string {
	s := width.Fold.String(norm.NFC.String(place))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(quoteRunes, r) {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, "번출구", "번")
}

// CanonicalPlaces canonicalises every token and drops the ones that become empty.
// Order is kept: a route A→B is not the route B→A.
func CanonicalPlaces(places []string) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		if c := CanonicalPlace(p); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// IdentityKey returns the deduplication key of the record
func (r *Record) IdentityKey() Key {
	locations := EncodeStrings(CanonicalPlaces(r.Locations))
	return Key(fmt.Sprintf("%s|%s|%s|%s",
		r.Date(),
		strings.TrimSpace(r.StartTime),
		strings.TrimSpace(r.EndTime),
		locations,
	))
}
