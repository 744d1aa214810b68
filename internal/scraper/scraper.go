package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/PuerkitoBio/goquery"
)

const (
	BaseURL    = "https://www.spatic.go.kr"
	ListPath   = "/spatic/main/assem.do"
	DetailPath = "/spatic/assem/getInfoView.do"
	UserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124.0 Safari/537.36 protest-crawler/1.0"
	Timeout    = 15 * time.Second
)

// ErrNoPost is returned when the board lists no assembly schedule post
var ErrNoPost = errors.New("no assembly schedule post on the board")

// Post is one entry of the SPATIC board list
type Post struct {
	Number string
	Title  string
	Posted string
}

// Seq returns the numeric post sequence, or -1 if the number has no digits
func (p Post) Seq() int {
	m := digitsPattern.FindString(p.Number)
	if m == "" {
		return -1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}

// Group is one row of a detail table: a time window and the places it covers
type Group struct {
	Start  string
	End    string
	Places []string
}

// Scraper fetches the SPATIC assembly board
type Scraper struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// New creates a new Scraper instance
func New() *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL: BaseURL,
		now:     time.Now,
	}
}

// Name identifies the source in logs and reports
func (s *Scraper) Name() string {
	return "spatic"
}

// Fetch returns the assemblies of the latest schedule post, dated with the
// post's publication date
func (s *Scraper) Fetch(ctx context.Context) ([]*assembly.Record, error) {
	posts, err := s.FetchPosts(ctx)
	if err != nil {
		return nil, err
	}

	post, date, ok := SelectLatest(posts, s.now())
	if !ok {
		return nil, ErrNoPost
	}

	groups, err := s.FetchDetail(ctx, post.Seq())
	if err != nil {
		return nil, err
	}

	records := make([]*assembly.Record, 0, len(groups))
	for _, g := range groups {
		records = append(records, assembly.NewRecord(date, g.Start, g.End, g.Places))
	}
	return records, nil
}

// FetchPosts fetches and parses the board list
func (s *Scraper) FetchPosts(ctx context.Context) ([]Post, error) {
	body, err := s.get(ctx, s.baseURL+ListPath)
	if err != nil {
		return nil, fmt.Errorf("fetching list: %w", err)
	}
	return ParsePosts(bytes.NewReader(body))
}

// FetchDetail fetches and parses the detail table of one post
func (s *Scraper) FetchDetail(ctx context.Context, seq int) ([]Group, error) {
	url := fmt.Sprintf("%s%s?mgrSeq=%d", s.baseURL, DetailPath, seq)
	body, err := s.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching post %d: %w", seq, err)
	}
	return ParseDetail(bytes.NewReader(body))
}

func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	seqPattern    = regexp.MustCompile(`mgrSeq=(\d+)`)

	// Embedded list data in the page scripts
	scriptListPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)var\s+\w*[Ll]ist\w*\s*=\s*(\[.*?\]);`),
		regexp.MustCompile(`(?s)\w*[Dd]ata\w*\s*=\s*(\[.*?\]);`),
		regexp.MustCompile(`(?s)resultList["']?\s*:\s*(\[.*?\])`),
	}

	eventTitlePattern = regexp.MustCompile(`행사\s*(?:및|/|‧|\||,)\s*집회`)
)

// ParsePosts extracts board entries from the list page, first from JSON arrays
// embedded in scripts and then from detail links. Entries are deduplicated by number.
func ParsePosts(r io.Reader) ([]Post, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	posts := make([]Post, 0)

	doc.Find("script").Each(func(_ int, sc *goquery.Selection) {
		text := sc.Text()
		if text == "" {
			return
		}
		for _, pat := range scriptListPatterns {
			m := pat.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			posts = append(posts, postsFromJSON(m[1])...)
		}
	})

	doc.Find(`a[href*="getInfoView.do?mgrSeq="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := seqPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		post := Post{Number: m[1], Title: spacedText(a)}
		a.Closest("tr").Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
			text := spacedText(td)
			if !assembly.ParseDate(text).IsZero() {
				post.Posted = text
				return false
			}
			return true
		})
		posts = append(posts, post)
	})

	seen := make(map[string]bool)
	unique := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Number == "" || seen[p.Number] {
			continue
		}
		seen[p.Number] = true
		unique = append(unique, p)
	}

	return unique, nil
}

func postsFromJSON(text string) []Post {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var items []map[string]interface{}
	if err := dec.Decode(&items); err != nil {
		return nil
	}

	posts := make([]Post, 0, len(items))
	for _, it := range items {
		posts = append(posts, Post{
			Number: firstField(it, "mgrSeq", "id", "seq"),
			Title:  firstField(it, "title", "subject"),
			Posted: firstField(it, "regDt", "regDate", "date"),
		})
	}
	return posts
}

func firstField(item map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

// IsScheduleTitle reports whether a post title announces the day's events and assemblies
func IsScheduleTitle(title string) bool {
	t := cleanText(title)
	if t == "" {
		return false
	}
	if eventTitlePattern.MatchString(t) {
		return true
	}
	return strings.Contains(t, "행사") && strings.Contains(t, "집회")
}

// SelectLatest picks the schedule post with the largest sequence number and the
// date it was posted on. When the posting date cannot be read, now's date is used.
func SelectLatest(posts []Post, now time.Time) (Post, assembly.Date, bool) {
	candidates := make([]Post, 0, len(posts))
	for _, p := range posts {
		if IsScheduleTitle(p.Title) && p.Seq() >= 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Post{}, assembly.Date{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Seq() > candidates[j].Seq()
	})

	latest := candidates[0]
	date := assembly.ParseDate(latest.Posted)
	if date.IsZero() {
		date = assembly.DateOf(now)
	}
	return latest, date, true
}

var detailTableSelectors = []string{
	"div.police_main_wrap.detail.flex.flex_column > section > div > div > ul.notice_datail.flex.flex_wrap > li.notice_contents > div > table",
	"ul.notice_datail.flex.flex_wrap li.notice_contents > div > table",
	"li.notice_contents > div > table",
	"li.notice_contents table",
}

func findDetailTable(doc *goquery.Document) *goquery.Selection {
	for _, sel := range detailTableSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return node
		}
	}

	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, tb *goquery.Selection) bool {
		label := normalizeLabel(tb.Text())
		if strings.Contains(label, "장소") && (strings.Contains(label, "시간") || strings.Contains(label, "집결")) {
			found = tb
			return false
		}
		return true
	})
	return found
}

type columns struct {
	time, place, route int
}

// headerColumns maps the header row labels to column positions. Missing time or
// place labels fall back to the usual layout: number, time, place.
func headerColumns(cells *goquery.Selection) columns {
	cols := columns{time: -1, place: -1, route: -1}
	cells.Each(func(i int, c *goquery.Selection) {
		label := normalizeLabel(c.Text())
		if strings.Contains(label, "시간") {
			cols.time = i
		}
		if strings.Contains(label, "장소") || strings.Contains(label, "집결") {
			cols.place = i
		}
		if strings.Contains(label, "행진") || strings.Contains(label, "경로") {
			cols.route = i
		}
	})

	n := cells.Length()
	if cols.time < 0 {
		cols.time = 0
		if n >= 2 {
			cols.time = 1
		}
	}
	if cols.place < 0 {
		cols.place = 1
		if n >= 3 {
			cols.place = 2
		}
	}
	return cols
}

// ParseDetail extracts the time windows and places from a post's detail table.
// Rows sharing a time window are merged, keeping the first-seen place order.
func ParseDetail(r io.Reader) ([]Group, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := findDetailTable(doc)
	if table == nil {
		return make([]Group, 0), nil
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return make([]Group, 0), nil
	}

	cols := headerColumns(rows.First().ChildrenFiltered("th, td"))

	groups := make([]Group, 0)
	index := make(map[string]int)

	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}

		start, end, ok := timeRange(spacedText(cells.Eq(cols.time)))
		if !ok {
			start, end, ok = timeRange(spacedText(cells))
		}
		if !ok {
			return
		}

		var places []string
		if cols.place < cells.Length() {
			places = placesFromCell(cells.Eq(cols.place))
		}
		if cols.route >= 0 && cols.route < cells.Length() && cols.route != cols.place {
			places = appendUnique(places, placesFromCell(cells.Eq(cols.route))...)
		}
		if len(places) == 0 {
			places = SplitPlaces(spacedText(cells))
		}
		if len(places) == 0 {
			return
		}

		key := start + "~" + end
		if i, ok := index[key]; ok {
			groups[i].Places = appendUnique(groups[i].Places, places...)
			return
		}
		index[key] = len(groups)
		groups = append(groups, Group{Start: start, End: end, Places: places})
	})

	return groups, nil
}

var (
	timeRangePattern = regexp.MustCompile(`(\d{1,2}\s*:\s*\d{2})\s*[~\-]\s*(\d{1,2}\s*:\s*\d{2})`)
	marchLabel       = regexp.MustCompile(`※\s*행진\s*:`)
	markerPattern    = regexp.MustCompile(`[①②③④⑤⑥⑦⑧⑨⑩■◆▶•∙·�※]`)
	remarkPattern    = regexp.MustCompile(`\([^)]*\)`)
	listPunctPattern = regexp.MustCompile(`[，、･·]+`)
	spacePattern     = regexp.MustCompile(`\s+`)
	routeSeparator   = regexp.MustCompile(`\s*(?:→|↔|⟷|↦|↪|➝|➔|~|〜|∼|-|–|—|/|,|>|▶|⇒)\s*`)
	letterPattern    = regexp.MustCompile(`[가-힣A-Za-z]`)
)

// timeRange finds an "HH:MM ~ HH:MM" window and returns both ends as zero-padded HH:MM
func timeRange(text string) (string, string, bool) {
	text = strings.NewReplacer("∼", "~", "〜", "~", "–", "-").Replace(text)
	m := timeRangePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return padClock(m[1]), padClock(m[2]), true
}

func padClock(clock string) string {
	clock = spacePattern.ReplaceAllString(clock, "")
	if i := strings.Index(clock, ":"); i == 1 {
		clock = "0" + clock
	}
	return clock
}

// placesFromCell collects the paragraphs of a place cell, the march route line
// included, and splits them into place tokens
func placesFromCell(cell *goquery.Selection) []string {
	parts := make([]string, 0)
	cell.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := spacedText(p); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		parts = append(parts, spacedText(cell))
	}

	raw := marchLabel.ReplaceAllString(strings.Join(parts, " "), " ")
	return SplitPlaces(raw)
}

func normalizePlaceText(text string) string {
	text = cleanText(text)
	text = markerPattern.ReplaceAllString(text, " ")
	text = remarkPattern.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "出", "")
	text = listPunctPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.Trim(text, " -–—~→↔⟷↦↪>/")
}

// SplitPlaces splits a place cell into its route nodes in order, dropping
// numbering marks, parenthesised remarks and repeated nodes
func SplitPlaces(text string) []string {
	text = normalizePlaceText(text)
	if text == "" {
		return nil
	}

	var places []string
	for _, part := range routeSeparator.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len([]rune(part)) <= 1 && !letterPattern.MatchString(part) {
			continue
		}
		places = appendUnique(places, part)
	}
	return places
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

// spacedText returns the text of a selection with element boundaries turned into spaces
func spacedText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteString(c.Text())
		case "#comment", "script", "style":
		default:
			b.WriteString(spacedText(c))
		}
		b.WriteByte(' ')
	})
	return cleanText(b.String())
}

func cleanText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// normalizeLabel removes all whitespace so "시 간" reads as "시간"
func normalizeLabel(text string) string {
	return spacePattern.ReplaceAllString(text, "")
}
