package smpa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

const (
	BaseURL   = "https://www.smpa.go.kr"
	ListPath  = "/user/nd54882.do"
	UserAgent = "Mozilla/5.0 (compatible; protest-crawler/1.0)"
	Timeout   = 30 * time.Second
)

var (
	// ErrNoPost is returned when the board has no post for today
	ErrNoPost = errors.New("no schedule post for today")
	// ErrNoPDF is returned when a post has no PDF attachment
	ErrNoPDF = errors.New("no PDF attachment on the post")
)

var (
	boardViewPattern = regexp.MustCompile(`goBoardView\('([^']+)'\s*,\s*'([^']+)'\s*,\s*'(\d+)'\)`)
	attachPattern    = regexp.MustCompile(`attachfileDownload\('([^']+)'\s*,\s*'(\d+)'\)`)
	unsafeNameChars  = regexp.MustCompile(`[^\w가-힣.\-]+`)
)

const maxFilenameLen = 120

// Post is the daily schedule post on the police agency board
type Post struct {
	Title   string
	BoardNo string
	ViewURL string

	view []byte
}

// Date returns the date in the post title ("오늘의 집회 250822 금")
func (p *Post) Date() assembly.Date {
	return assembly.ParseCompactDate(p.Title)
}

// Board fetches the Seoul Metropolitan Police Agency "오늘의 집회" board
type Board struct {
	client  *resty.Client
	baseURL string
	now     func() time.Time
}

// NewBoard creates a board client
func NewBoard() *Board {
	client := resty.New().
		SetTimeout(Timeout).
		SetHeaders(map[string]string{
			"User-Agent":      UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "ko-KR,ko;q=0.9,en;q=0.8",
			"Referer":         BaseURL + ListPath,
		})

	return &Board{
		client:  client,
		baseURL: BaseURL,
		now:     time.Now,
	}
}

// todayTitle is the title prefix of today's post, e.g. "오늘의 집회 250822"
func (b *Board) todayTitle() string {
	return "오늘의 집회 " + b.now().In(assembly.Seoul).Format("060102")
}

// FindTodayPost locates today's schedule post and loads its view page
func (b *Board) FindTodayPost(ctx context.Context) (*Post, error) {
	resp, err := b.client.R().SetContext(ctx).Get(b.baseURL + ListPath)
	if err != nil {
		return nil, fmt.Errorf("fetching board list: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetching board list: unexpected status code: %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parsing board list: %w", err)
	}

	links := doc.Find("#subContents > div > div.inContent > table > tbody a[href^='javascript:goBoardView']")
	if links.Length() == 0 {
		links = doc.Find("a[href^='javascript:goBoardView']")
	}

	want := b.todayTitle()
	var post *Post
	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = strings.TrimSpace(a.Closest("td").Text())
		}
		if !strings.Contains(title, want) {
			return true
		}

		href, _ := a.Attr("href")
		if m := boardViewPattern.FindStringSubmatch(href); m != nil {
			post = &Post{Title: title, BoardNo: m[3]}
			return false
		}
		return true
	})

	if post == nil {
		return nil, fmt.Errorf("%w (%s)", ErrNoPost, want)
	}

	for _, query := range []string{"View&boardNo=", "dmlType=View&boardNo="} {
		viewURL := b.baseURL + ListPath + "?" + query + post.BoardNo
		resp, err := b.client.R().SetContext(ctx).Get(viewURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if resp.StatusCode() == 200 && strings.Contains(strings.ToLower(resp.Header().Get("Content-Type")), "html") {
			post.ViewURL = viewURL
			post.view = resp.Body()
			return post, nil
		}
	}

	return nil, fmt.Errorf("loading view page of post %s failed", post.BoardNo)
}

// DownloadPDF saves the post's PDF attachment into dir and returns its path.
// Attachments whose link text mentions PDF are tried first; a download counts as
// a PDF when it starts with the PDF magic bytes or is served as application/pdf.
func (b *Board) DownloadPDF(ctx context.Context, post *Post, dir string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(post.view))
	if err != nil {
		return "", fmt.Errorf("parsing view page: %w", err)
	}

	all := doc.Find("a[onclick*='attachfileDownload']")
	preferred := all.FilterFunction(func(_ int, a *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(a.Text()), "pdf")
	})
	candidates := preferred
	if candidates.Length() == 0 {
		candidates = all
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating attachments directory: %w", err)
	}

	base, err := url.Parse(b.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	var lastErr error
	for i := range candidates.Nodes {
		a := candidates.Eq(i)
		onclick, _ := a.Attr("onclick")
		m := attachPattern.FindStringSubmatch(onclick)
		if m == nil {
			continue
		}
		ref, err := url.Parse(m[1])
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := b.client.R().
			SetContext(ctx).
			SetQueryParam("attachNo", m[2]).
			Get(base.ResolveReference(ref).String())
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode() != 200 {
			lastErr = fmt.Errorf("downloading attachment %s: unexpected status code: %d", m[2], resp.StatusCode())
			continue
		}

		body := resp.Body()
		if !isPDF(body, resp.Header().Get("Content-Type")) {
			continue
		}

		name := filenameFromDisposition(resp.Header().Get("Content-Disposition"))
		if name == "" {
			name = strings.TrimSpace(a.Text())
		}
		if name == "" {
			name = m[2] + ".pdf"
		}

		path := filepath.Join(dir, SanitizeFilename(name))
		if err := os.WriteFile(path, body, 0644); err != nil {
			return "", fmt.Errorf("saving attachment: %w", err)
		}
		return path, nil
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoPDF
}

func isPDF(body []byte, contentType string) bool {
	return bytes.HasPrefix(body, []byte("%PDF-")) || strings.Contains(strings.ToLower(contentType), "pdf")
}

func filenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// SanitizeFilename makes an attachment name safe to store, forcing a .pdf extension
func SanitizeFilename(name string) string {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext) + ".pdf"
	}

	safe := unsafeNameChars.ReplaceAllString(name, "_")
	if r := []rune(safe); len(r) > maxFilenameLen {
		safe = string(r[:maxFilenameLen])
	}
	return strings.Trim(safe, "._")
}
