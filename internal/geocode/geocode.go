package geocode

import (
	"context"
	"time"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
)

// Point is a WGS84 coordinate
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves a place name to a point. notes carry free-text hints such as
// the district or police station. A place that cannot be resolved is (nil, nil).
type Geocoder interface {
	Geocode(ctx context.Context, place, notes string) (*Point, error)
}

// Stats summarises an Enrich pass
type Stats struct {
	Places   int `json:"places"`
	Resolved int `json:"resolved"`
	Missed   int `json:"missed"`
	Failed   int `json:"failed"`
}

// Enrich fills each record's coordinate lists so they align with its locations.
// Places that already have both coordinates are kept; the rest are geocoded.
// A failed lookup leaves a null entry and is logged. Only context cancellation
// stops the pass.
func Enrich(ctx context.Context, g Geocoder, records []*assembly.Record) (Stats, error) {
	var stats Stats
	start := time.Now()
	defer func() {
		logger.RecordTiming("geocode.enrich", time.Since(start))
	}()

	for _, rec := range records {
		n := len(rec.Locations)
		if n == 0 {
			continue
		}

		lats := make([]*float64, n)
		lons := make([]*float64, n)
		if len(rec.Latitudes) == n && len(rec.Longitudes) == n {
			copy(lats, rec.Latitudes)
			copy(lons, rec.Longitudes)
		}

		for i, place := range rec.Locations {
			stats.Places++
			if lats[i] != nil && lons[i] != nil {
				stats.Resolved++
				continue
			}
			lats[i], lons[i] = nil, nil

			p, err := g.Geocode(ctx, place, rec.Notes)
			if err != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				stats.Failed++
				logger.Warn("Geocoding failed", logger.Fields{
					"place": place,
					"date":  rec.Date().String(),
				}, err)
				continue
			}
			if p == nil {
				stats.Missed++
				logger.Debug("Place not found", logger.Fields{"place": place})
				continue
			}

			stats.Resolved++
			lats[i] = assembly.Float(p.Lat)
			lons[i] = assembly.Float(p.Lon)
		}

		rec.Latitudes = lats
		rec.Longitudes = lons
	}

	logger.Add("geocode.resolved", int64(stats.Resolved))
	logger.Add("geocode.failed", int64(stats.Failed))
	return stats, nil
}
