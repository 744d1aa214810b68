package smpa

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

var (
	brokenClockPattern = regexp.MustCompile(`(\d{1,2})\s*\n\s*:\s*(\d{2})`)
	brokenRangePattern = regexp.MustCompile(`(\d{1,2}\s*:\s*\d{2})\s*\n\s*~\s*\n\s*(\d{1,2}\s*:\s*\d{2})`)
	timeRangePattern   = regexp.MustCompile(`(\d{1,2}\s*:\s*\d{2})\s*~\s*(\d{1,2}\s*:\s*\d{2})`)

	headcountPattern  = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*명`)
	bareNumberPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d{3,}`)

	bracketedPattern = regexp.MustCompile(`<([^>]+)>`)
	routePattern     = regexp.MustCompile(`\s*(?:→|↔|~)\s*`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// normalizeTimeBreaks rejoins clocks and ranges that text extraction split over lines
func normalizeTimeBreaks(text string) string {
	text = brokenClockPattern.ReplaceAllString(text, "$1:$2")
	return brokenRangePattern.ReplaceAllString(text, "$1~$2")
}

// ParseText splits the extracted text of a schedule PDF into records, one per
// "HH:MM ~ HH:MM" window. The text following a window up to the next one holds the
// route, the expected headcount and free-form remarks.
func ParseText(text string, date assembly.Date) []*assembly.Record {
	text = normalizeTimeBreaks(text)

	matches := timeRangePattern.FindAllStringSubmatchIndex(text, -1)
	records := make([]*assembly.Record, 0, len(matches))

	for i, m := range matches {
		start := clock(text[m[2]:m[3]])
		end := clock(text[m[4]:m[5]])

		next := len(text)
		if i+1 < len(matches) {
			next = matches[i+1][0]
		}
		chunk := strings.TrimSpace(text[m[1]:next])

		before, after := chunk, ""
		headcount := ""
		if count, from, to, ok := extractHeadcount(chunk); ok {
			headcount = strings.ReplaceAll(count, ",", "")
			before, after = chunk[:from], chunk[to:]
		}

		placeBlock := strings.TrimSpace(before)
		var aux []string
		for _, sm := range bracketedPattern.FindAllStringSubmatch(placeBlock, -1) {
			aux = append(aux, strings.TrimSpace(sm[1]))
		}

		notes := joinNonEmpty(strings.TrimSpace(after), strings.Join(aux, " "))

		rec := assembly.NewRecord(date, start, end, placeNodes(placeBlock))
		rec.Headcount = headcount
		rec.Notes = collapseKoreanGaps(spacePattern.ReplaceAllString(notes, " "))
		records = append(records, rec)
	}

	return records
}

// extractHeadcount finds the expected attendance: "N명", or failing that the first
// number of at least 100 (or written with thousands separators) that is not an
// exit number followed by 出
func extractHeadcount(block string) (string, int, int, bool) {
	if m := headcountPattern.FindStringSubmatchIndex(block); m != nil {
		return block[m[2]:m[3]], m[0], m[1], true
	}

	for _, m := range bareNumberPattern.FindAllStringIndex(block, -1) {
		if strings.HasPrefix(block[m[1]:], "出") {
			continue
		}
		num := block[m[0]:m[1]]
		n, err := strconv.Atoi(strings.ReplaceAll(num, ",", ""))
		if err != nil {
			continue
		}
		if n >= 100 || strings.Contains(num, ",") {
			return num, m[0], m[1], true
		}
	}
	return "", 0, 0, false
}

// placeNodes splits a route into its nodes; bracketed remarks are dropped
func placeNodes(text string) []string {
	text = bracketedPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	var nodes []string
	for _, part := range routePattern.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			nodes = append(nodes, part)
		}
	}
	return nodes
}

// collapseKoreanGaps joins runs of single Hangul syllables that text extraction
// spread apart, such as "종 로 서" into "종로서", when the run is 2 to 5 syllables
func collapseKoreanGaps(text string) string {
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))

	flush := func(run []string) {
		if len(run) >= 2 && len(run) <= 5 {
			out = append(out, strings.Join(run, ""))
			return
		}
		out = append(out, run...)
	}

	var run []string
	for _, tok := range tokens {
		if isSingleSyllable(tok) {
			run = append(run, tok)
			continue
		}
		flush(run)
		run = run[:0]
		out = append(out, tok)
	}
	flush(run)

	return strings.Join(out, " ")
}

func isSingleSyllable(tok string) bool {
	r := []rune(tok)
	return len(r) == 1 && r[0] >= '가' && r[0] <= '힣'
}

func clock(text string) string {
	text = spacePattern.ReplaceAllString(text, "")
	if strings.Index(text, ":") == 1 {
		text = "0" + text
	}
	return text
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
