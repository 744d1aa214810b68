package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/geocode"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

var (
	day1 = assembly.Date{Year: 2025, Month: 8, Day: 22}
	day2 = assembly.Date{Year: 2025, Month: 8, Day: 23}
)

type fakeSource struct {
	records []*assembly.Record
	err     error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]*assembly.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*assembly.Record, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

type fakeGeocoder map[string]*geocode.Point

func (f fakeGeocoder) Geocode(ctx context.Context, place, notes string) (*geocode.Point, error) {
	return f[place], nil
}

func newStores(t *testing.T) (*storage.Storage, *storage.Storage) {
	t.Helper()
	dir := t.TempDir()
	primary, err := storage.New(dir, "집회_정보")
	if err != nil {
		t.Fatal(err)
	}
	district, err := storage.New(dir, "집회_정보_종로")
	if err != nil {
		t.Fatal(err)
	}
	return primary, district
}

func TestRun_Merge(t *testing.T) {
	store, districtStore := newStores(t)

	// An earlier run saved the morning assembly without a headcount
	earlier := assembly.NewRecord(day1, "09:00", "11:00", []string{"광화문"})
	seed := assembly.NewBatch(day1)
	seed.Records = []*assembly.Record{earlier}
	if err := store.SaveBatch(seed); err != nil {
		t.Fatal(err)
	}

	again := assembly.NewRecord(day1, "09:00", "11:00", []string{"광화문"})
	again.Headcount = "300"
	fresh := assembly.NewRecord(day1, "14:00", "16:00", []string{"여의도공원"})
	nextDay := assembly.NewRecord(day2, "10:00", "12:00", []string{"세종문화회관"})

	c := &Collector{
		Source: &fakeSource{records: []*assembly.Record{again, fresh, nextDay}},
		Geocoder: fakeGeocoder{
			"광화문": {Lat: 37.5717, Lon: 126.9769},
		},
		Store:         store,
		DistrictStore: districtStore,
		Policy:        assembly.PolicyMerge,
	}

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
	}
	if report.Fetched != 3 {
		t.Errorf("Fetched = %d, want 3", report.Fetched)
	}
	if len(report.Dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(report.Dates))
	}
	if report.Geocode == nil || report.Geocode.Resolved != 1 {
		t.Errorf("geocode stats = %+v, want 1 resolved", report.Geocode)
	}

	d1 := report.Dates[0].Main
	if d1.Enriched != 1 || d1.Added != 1 || d1.Total != 2 {
		t.Errorf("day 1 report = %+v, want 1 enriched, 1 added, 2 total", d1)
	}

	loaded, err := store.LoadBatch(day1)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("expected 2 records for day 1, got %d", len(loaded.Records))
	}
	first := loaded.Records[0]
	if first.Headcount != "300" {
		t.Errorf("headcount = %q, want the filled value 300", first.Headcount)
	}
	if len(first.Latitudes) != 1 || first.Latitudes[0] == nil {
		t.Errorf("coordinates were not filled: %v", first.Latitudes)
	}
	if loaded.Records[1].StartTime != "14:00" {
		t.Errorf("new record should be appended after the existing one")
	}

	// Jongno subset: 광화문 (coordinates) and 세종문화회관 (landmark), not 여의도공원
	jd1, err := districtStore.LoadBatch(day1)
	if err != nil {
		t.Fatal(err)
	}
	if len(jd1.Records) != 1 || jd1.Records[0].Locations[0] != "광화문" {
		t.Errorf("district day 1 = %+v, want only 광화문", jd1.Records)
	}
	jd2, err := districtStore.LoadBatch(day2)
	if err != nil {
		t.Fatal(err)
	}
	if len(jd2.Records) != 1 {
		t.Errorf("district day 2 has %d records, want 1", len(jd2.Records))
	}
}

func TestRun_MergeIsIdempotent(t *testing.T) {
	store, _ := newStores(t)

	rec := assembly.NewRecord(day1, "09:00", "11:00", []string{"광화문", "종각역"})
	rec.Headcount = "200"
	c := &Collector{
		Source: &fakeSource{records: []*assembly.Record{rec}},
		Store:  store,
		Policy: assembly.PolicyMerge,
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	loaded, err := store.LoadBatch(day1)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Records) != 1 {
		t.Errorf("expected 1 record after two identical runs, got %d", len(loaded.Records))
	}
}

func TestRun_Overwrite(t *testing.T) {
	store, _ := newStores(t)

	old := assembly.NewBatch(day1)
	old.Records = []*assembly.Record{
		assembly.NewRecord(day1, "08:00", "09:00", []string{"서울역"}),
		assembly.NewRecord(day1, "10:00", "11:00", []string{"시청"}),
	}
	if err := store.SaveBatch(old); err != nil {
		t.Fatal(err)
	}

	replacement := assembly.NewRecord(day1, "13:00", "15:00", []string{"광화문"})
	c := &Collector{
		Source: &fakeSource{records: []*assembly.Record{replacement}},
		Store:  store,
		Policy: assembly.PolicyOverwrite,
	}

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Dates[0].District != nil {
		t.Error("no district report expected without a district store")
	}

	loaded, err := store.LoadBatch(day1)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Records) != 1 || loaded.Records[0].StartTime != "13:00" {
		t.Errorf("snapshot = %+v, want only the replacement record", loaded.Records)
	}
}

func TestRun_SourceError(t *testing.T) {
	store, _ := newStores(t)
	boom := errors.New("board unavailable")

	c := &Collector{
		Source: &fakeSource{err: boom},
		Store:  store,
		Policy: assembly.PolicyMerge,
	}

	if _, err := c.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped source error", err)
	}

	dates, err := store.ListDates()
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 0 {
		t.Errorf("no snapshot should be written on fetch failure, got %v", dates)
	}
}

func TestRun_NoRecords(t *testing.T) {
	store, _ := newStores(t)

	c := &Collector{
		Source: &fakeSource{},
		Store:  store,
		Policy: assembly.PolicyMerge,
	}

	report, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Dates) != 0 {
		t.Errorf("expected no dates, got %d", len(report.Dates))
	}
}
