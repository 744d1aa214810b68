package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

type stubGeocoder struct {
	points map[string]*Point
	errs   map[string]error
	calls  []string
}

func (s *stubGeocoder) Geocode(ctx context.Context, place, notes string) (*Point, error) {
	s.calls = append(s.calls, place)
	if err := s.errs[place]; err != nil {
		return nil, err
	}
	return s.points[place], nil
}

func TestEnrich(t *testing.T) {
	date := assembly.Date{Year: 2025, Month: 8, Day: 22}

	g := &stubGeocoder{
		points: map[string]*Point{
			"광화문": {Lat: 37.5717, Lon: 126.9769},
		},
		errs: map[string]error{
			"종각역": errors.New("timeout"),
		},
	}

	r1 := assembly.NewRecord(date, "09:00", "11:00", []string{"광화문", "종각역", "어딘가"})
	r2 := assembly.NewRecord(date, "12:00", "13:00", []string{"보신각"})
	r2.Latitudes = []*float64{assembly.Float(37.5697)}
	r2.Longitudes = []*float64{assembly.Float(126.9836)}
	r3 := assembly.NewRecord(date, "14:00", "15:00", nil)

	stats, err := Enrich(context.Background(), g, []*assembly.Record{r1, r2, r3})
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}

	if len(r1.Latitudes) != 3 || len(r1.Longitudes) != 3 {
		t.Fatalf("coordinates not aligned: %d/%d", len(r1.Latitudes), len(r1.Longitudes))
	}
	if r1.Latitudes[0] == nil || *r1.Latitudes[0] != 37.5717 {
		t.Errorf("first latitude = %v", r1.Latitudes[0])
	}
	if r1.Latitudes[1] != nil || r1.Latitudes[2] != nil {
		t.Error("failed and missed places should have null coordinates")
	}

	// already resolved places are not looked up again
	for _, c := range g.calls {
		if c == "보신각" {
			t.Error("resolved place was geocoded again")
		}
	}
	if r3.Latitudes != nil {
		t.Error("record without locations should stay without coordinates")
	}

	want := Stats{Places: 4, Resolved: 2, Missed: 1, Failed: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestEnrich_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &stubGeocoder{errs: map[string]error{"광화문": context.Canceled}}
	rec := assembly.NewRecord(assembly.Date{Year: 2025, Month: 8, Day: 22}, "09:00", "10:00", []string{"광화문"})

	if _, err := Enrich(ctx, g, []*assembly.Record{rec}); !errors.Is(err, context.Canceled) {
		t.Errorf("Enrich() error = %v, want context.Canceled", err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache(-time.Second)
	c.Set("q", &Point{Lat: 1, Lon: 2})
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
	// negative TTL expires immediately
	if _, ok := c.Get("q"); ok {
		t.Error("expected entry to be expired")
	}

	c = NewCache(time.Hour)
	c.Set("miss", nil)
	if p, ok := c.Get("miss"); !ok || p != nil {
		t.Errorf("Get(miss) = %v, %v; want nil, true", p, ok)
	}
	if removed := c.CleanExpired(); removed != 0 {
		t.Errorf("CleanExpired() = %d, want 0", removed)
	}
}
