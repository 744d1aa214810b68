package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/geocode"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
	"github.com/MinhaKim02/protest-crawling-database/internal/region"
	"github.com/MinhaKim02/protest-crawling-database/internal/storage"
)

// Source produces freshly scraped records
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]*assembly.Record, error)
}

// Collector runs one scrape and persists its result per target date
type Collector struct {
	Source Source
	// Geocoder fills coordinates before persisting; nil skips geocoding
	Geocoder geocode.Geocoder
	Store    *storage.Storage
	// DistrictStore receives the records District selects; nil disables it
	DistrictStore *storage.Storage
	District      func(*assembly.Record) bool
	Policy        assembly.Policy
}

// StoreReport describes what one store received for one date
type StoreReport struct {
	Path     string `json:"path"`
	Incoming int    `json:"incoming"`
	Retained int    `json:"retained"`
	Enriched int    `json:"enriched"`
	Added    int    `json:"added"`
	Total    int    `json:"total"`
}

// DateReport describes the outcome for one target date
type DateReport struct {
	Date     string       `json:"date"`
	Main     StoreReport  `json:"main"`
	District *StoreReport `json:"district,omitempty"`
}

// Report summarises a run
type Report struct {
	RunID     string         `json:"run_id"`
	Source    string         `json:"source"`
	Policy    string         `json:"policy"`
	StartedAt time.Time      `json:"started_at"`
	Duration  string         `json:"duration"`
	Fetched   int            `json:"fetched"`
	Geocode   *geocode.Stats `json:"geocode,omitempty"`
	Dates     []DateReport   `json:"dates"`
}

// Run fetches from the source, geocodes, and reconciles each target date's batch
// with its snapshot under the collector's policy. A fetch or storage failure aborts
// the run; dates already written stay written.
func (c *Collector) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    c.Source.Name(),
		Policy:    string(c.Policy),
		StartedAt: started,
		Dates:     make([]DateReport, 0),
	}
	log := logger.Default().With(logger.Fields{
		"run_id": report.RunID,
		"source": report.Source,
	})

	records, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching from %s: %w", report.Source, err)
	}
	report.Fetched = len(records)
	logger.Add("records.fetched", int64(len(records)))
	log.Info("Fetched records", logger.Fields{"count": len(records)})

	if c.Geocoder != nil && len(records) > 0 {
		stats, err := geocode.Enrich(ctx, c.Geocoder, records)
		if err != nil {
			return nil, fmt.Errorf("geocoding: %w", err)
		}
		report.Geocode = &stats
		log.Info("Geocoded places", logger.Fields{
			"places":   stats.Places,
			"resolved": stats.Resolved,
			"missed":   stats.Missed,
			"failed":   stats.Failed,
		})
	}

	district := c.District
	if district == nil {
		district = region.InJongno
	}

	for _, batch := range assembly.GroupByDate(records) {
		if !batch.Date.Valid() {
			log.Warn("Skipping records without a valid date", logger.Fields{
				"count": len(batch.Records),
			}, nil)
			continue
		}

		dr := DateReport{Date: batch.Date.String()}

		primary, err := c.persist(c.Store, batch, log)
		if err != nil {
			return nil, err
		}
		dr.Main = *primary

		if c.DistrictStore != nil {
			filtered := assembly.NewBatch(batch.Date)
			filtered.Records = assembly.Filter(batch.Records, district)

			sr, err := c.persist(c.DistrictStore, filtered, log)
			if err != nil {
				return nil, err
			}
			dr.District = sr
		}

		report.Dates = append(report.Dates, dr)
	}

	if len(records) == 0 {
		log.Info("No records fetched; snapshots left untouched", nil)
	}

	elapsed := time.Since(started)
	report.Duration = elapsed.Round(time.Millisecond).String()
	logger.RecordTiming("collector.run", elapsed)

	return report, nil
}

// persist reconciles a batch with the store's snapshot for its date and writes the result
func (c *Collector) persist(store *storage.Storage, batch *assembly.Batch, log *logger.Logger) (*StoreReport, error) {
	var existing []*assembly.Record
	if c.Policy == assembly.PolicyMerge {
		loaded, err := store.LoadBatch(batch.Date)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot for %s: %w", batch.Date, err)
		}
		existing = loaded.Records
	}

	result := assembly.Reconcile(existing, batch.Records, c.Policy)

	out := assembly.NewBatch(batch.Date)
	out.Records = result.Records
	if err := store.SaveBatch(out); err != nil {
		return nil, fmt.Errorf("saving snapshot for %s: %w", batch.Date, err)
	}

	for _, ch := range result.Changes {
		log.Debug("Filled field", logger.Fields{
			"key":   string(ch.Key),
			"field": ch.Field,
			"value": ch.NewValue,
		})
	}

	sr := &StoreReport{
		Path:     store.Path(batch.Date),
		Incoming: len(batch.Records),
		Retained: result.Retained,
		Enriched: result.Enriched,
		Added:    result.Added,
		Total:    len(result.Records),
	}
	logger.Add("records.added", int64(result.Added))
	logger.Add("records.enriched", int64(result.Enriched))

	log.Info("Snapshot written", logger.Fields{
		"path":     sr.Path,
		"retained": sr.Retained,
		"enriched": sr.Enriched,
		"added":    sr.Added,
		"total":    sr.Total,
	})
	return sr, nil
}
