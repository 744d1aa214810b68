package smpa

import (
	"context"
	"time"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
)

// Source produces records from the daily schedule PDF, either downloaded from the
// board or read from a local file
type Source struct {
	board          *Board
	pdfPath        string
	date           assembly.Date
	attachmentsDir string
	extract        func(path string) (string, error)
	now            func() time.Time
}

// NewSource creates a source that downloads today's PDF into attachmentsDir
func NewSource(attachmentsDir string) *Source {
	return &Source{
		board:          NewBoard(),
		attachmentsDir: attachmentsDir,
		extract:        ExtractText,
		now:            time.Now,
	}
}

// NewFileSource creates a source reading a local PDF. Records are dated with date,
// or today when date is zero.
func NewFileSource(path string, date assembly.Date) *Source {
	return &Source{
		pdfPath: path,
		date:    date,
		extract: ExtractText,
		now:     time.Now,
	}
}

// Name identifies the source in logs and reports
func (s *Source) Name() string {
	return "smpa"
}

// Fetch downloads (or opens) the PDF and parses it into records without coordinates
func (s *Source) Fetch(ctx context.Context) ([]*assembly.Record, error) {
	path, date := s.pdfPath, s.date

	if path == "" {
		post, err := s.board.FindTodayPost(ctx)
		if err != nil {
			return nil, err
		}
		path, err = s.board.DownloadPDF(ctx, post, s.attachmentsDir)
		if err != nil {
			return nil, err
		}
		date = post.Date()
		logger.Info("Downloaded schedule PDF", logger.Fields{
			"title": post.Title,
			"path":  path,
		})
	}

	if date.IsZero() {
		date = assembly.DateOf(s.now())
	}

	text, err := s.extract(path)
	if err != nil {
		return nil, err
	}

	return ParseText(text, date), nil
}
