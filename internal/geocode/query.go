package geocode

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/MinhaKim02/protest-crawling-database/internal/region"
)

var (
	remarkPattern      = regexp.MustCompile(`[（(].*?[）)]`)
	hangulThenAlnum    = regexp.MustCompile(`([가-힣])([A-Za-z0-9])`)
	alnumThenHangul    = regexp.MustCompile(`([A-Za-z0-9])([가-힣])`)
	exitPattern        = regexp.MustCompile(`(\d+)\s*번?\s*출(?:구)?`)
	stationExitPattern = regexp.MustCompile(`(.*?역)\s*(\d+)\s*번\s*출구`)
	policeBoxPattern   = regexp.MustCompile(`(?i)PB`)
	multiSpacePattern  = regexp.MustCompile(`\s{2,}`)

	// Road, square, station and building names mentioned in notes
	contextTokenPattern = regexp.MustCompile(`[가-힣A-Za-z0-9]{2,}(?:대로|로|길|가|광장|사거리|교차로|역|동|공원|청사|빌딩|센터|주민센터|회관|학교|대학|병원)`)
)

const maxContextTokenLen = 12

// NormalizePlace rewrites a place name into the form the search API matches best:
// ASCII digits, "N번 출구" exits, and a space between Hangul and Latin/digit runs
func NormalizePlace(place string) string {
	t := width.Fold.String(place)
	t = strings.ReplaceAll(t, "〇", "0")
	t = strings.NewReplacer("出口", "출구", "出", "출구", "口", "출구").Replace(t)
	t = hangulThenAlnum.ReplaceAllString(t, "$1 $2")
	t = alnumThenHangul.ReplaceAllString(t, "$1 $2")
	t = exitPattern.ReplaceAllString(t, "${1}번 출구")
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(t, " "))
}

// ContextTokens extracts landmark-like words from notes to disambiguate a place
func ContextTokens(notes string) []string {
	var tokens []string
	for _, tok := range contextTokenPattern.FindAllString(notes, -1) {
		if len([]rune(tok)) > maxContextTokenLen {
			continue
		}
		tokens = appendUnique(tokens, tok)
	}
	return tokens
}

// Candidates builds the ordered list of search queries tried for one place
func Candidates(place, notes string, area region.Area) []string {
	cleaned := strings.TrimSpace(remarkPattern.ReplaceAllString(place, ""))
	if cleaned == "" {
		cleaned = place
	}
	base := NormalizePlace(cleaned)
	if base == "" {
		return nil
	}

	variants := []string{base}

	if m := stationExitPattern.FindStringSubmatch(base); m != nil {
		station, num := strings.TrimSpace(m[1]), m[2]
		variants = appendUnique(variants,
			station+" "+num+"번 출구",
			station+" "+num+"번출구",
			station+" "+num+" 출구",
			station,
		)
	}

	if policeBoxPattern.MatchString(base) {
		stub := strings.TrimSpace(policeBoxPattern.ReplaceAllString(base, ""))
		variants = appendUnique(variants, stub+" 파출소", stub+" 지구대", stub+" 경찰박스")
	}

	if strings.Contains(base, "삼각지") && !strings.Contains(base, "역") {
		variants = appendUnique(variants, "삼각지역", "삼각지 사거리", "삼각지 교차로")
	}

	var prefixes []string
	if gu := region.District(notes); gu != "" {
		prefixes = append(prefixes, "서울 "+gu)
	}
	prefixes = appendUnique(prefixes, area.Prefixes...)

	var expanded []string
	for _, q := range variants {
		expanded = append(expanded, q)
		for _, p := range prefixes {
			expanded = append(expanded, p+" "+q)
		}
	}
	for _, tok := range ContextTokens(notes) {
		expanded = append(expanded, tok, tok+" "+base, base+" "+tok)
		for _, p := range prefixes {
			expanded = append(expanded, p+" "+tok, p+" "+tok+" "+base, p+" "+base+" "+tok)
		}
	}

	var out []string
	for _, q := range expanded {
		q = strings.TrimSpace(multiSpacePattern.ReplaceAllString(q, " "))
		if q != "" {
			out = appendUnique(out, q)
		}
	}
	return out
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, existing := range list {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	return list
}
