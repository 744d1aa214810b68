package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
)

// Snapshot name prefixes
const (
	// MainPrefix holds every collected assembly
	MainPrefix = "집회_정보"
	// IntegratedPrefix holds the police agency's city-wide schedule
	IntegratedPrefix = "집회정보_통합"
)

// DistrictPrefix returns the prefix of the Jongno subset stored alongside prefix
func DistrictPrefix(prefix string) string {
	return prefix + "_종로"
}

// encodeRecords writes the snapshot body; replaced in tests
var encodeRecords = WriteRecords

// utf8BOM is written at the top of every snapshot so spreadsheets detect UTF-8
const utf8BOM = "\ufeff"

// Storage handles persistence of dated snapshot files sharing one name prefix
type Storage struct {
	dataDir string
	prefix  string
}

// New creates a new Storage instance writing <prefix>_<YYYY-MM-DD>.csv files
func New(dataDir, prefix string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if prefix == "" {
		return nil, errors.New("snapshot prefix is required")
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
		prefix:  prefix,
	}, nil
}

// DataDir returns the directory snapshots are stored in
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Path returns the snapshot path for a date
func (s *Storage) Path(date assembly.Date) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s_%s.csv", s.prefix, date))
}

// Exists reports whether a snapshot for the date has been written
func (s *Storage) Exists(date assembly.Date) bool {
	_, err := os.Stat(s.Path(date))
	return err == nil
}

// LoadBatch loads the snapshot for a date.
// A missing file yields an empty batch. Malformed fields are logged and left empty,
// except the date columns, which fall back to the snapshot's date.
func (s *Storage) LoadBatch(date assembly.Date) (*assembly.Batch, error) {
	path := s.Path(date)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return assembly.NewBatch(date), nil
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f, func(line int, fieldErr error) {
		logger.Warn("Malformed snapshot field treated as empty", logger.Fields{
			"path": path,
			"line": line,
		}, fieldErr)
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", filepath.Base(path), err)
	}

	for _, rec := range records {
		fillDate(rec, date)
	}

	batch := assembly.NewBatch(date)
	batch.Records = records
	return batch, nil
}

// fillDate replaces a missing or out-of-range year, month or day with the
// snapshot's own date, which is the file's partition key
func fillDate(rec *assembly.Record, date assembly.Date) {
	if rec.Year <= 0 {
		rec.Year = date.Year
	}
	if rec.Month < 1 || rec.Month > 12 {
		rec.Month = date.Month
	}
	if rec.Day < 1 || rec.Day > 31 {
		rec.Day = date.Day
	}
}

// ReadRecords decodes a snapshot table. onFieldError is called for every field
// that was malformed and treated as empty; it may be nil.
func ReadRecords(r io.Reader, onFieldError func(line int, err error)) ([]*assembly.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return make([]*assembly.Record, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = assembly.CanonicalColumn(h)
	}

	records := make([]*assembly.Record, 0)
	for line := 2; ; line++ {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		row := make(map[string]string, len(columns))
		for i, v := range values {
			if i < len(columns) && columns[i] != "" {
				row[columns[i]] = v
			}
		}

		rec, fieldErrs := assembly.FromRow(row)
		if onFieldError != nil {
			for _, fe := range fieldErrs {
				onFieldError(line, fe)
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// WriteRecords encodes records as a snapshot table with a header row
func WriteRecords(w io.Writer, records []*assembly.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(assembly.Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(rec.Values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveBatch writes the snapshot for the batch's date, replacing any previous one.
// The file is written to a temporary name and renamed, so readers never see a
// partial snapshot.
func (s *Storage) SaveBatch(batch *assembly.Batch) error {
	path := s.Path(batch.Date)

	tmp, err := os.CreateTemp(s.dataDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", step, err)
	}

	if _, err := io.WriteString(tmp, utf8BOM); err != nil {
		return fail("writing snapshot", err)
	}
	if err := encodeRecords(tmp, batch.Records); err != nil {
		return fail("encoding snapshot", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// ListDates returns the dates that have a snapshot, oldest first
func (s *Storage) ListDates() ([]assembly.Date, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(s.prefix) + `_(\d{4}-\d{2}-\d{2})\.csv$`)

	dates := make([]assembly.Date, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if d := assembly.ParseDate(m[1]); !d.IsZero() {
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].String() < dates[j].String()
	})
	return dates, nil
}
