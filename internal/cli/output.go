package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/calendar"
	"github.com/MinhaKim02/protest-crawling-database/internal/collector"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// parseFormat validates a --format value against the formats a command supports
func parseFormat(name string, allowed ...OutputFormat) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	names := make([]string, 0, len(allowed))
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
		names = append(names, "'"+string(f)+"'")
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", name, strings.Join(names, " or "))
}

// BatchOutput is the JSON form of a snapshot
type BatchOutput struct {
	Date       string             `json:"date"`
	Count      int                `json:"count"`
	Assemblies []*assembly.Record `json:"assemblies"`
}

// WriteReport writes a collection report in the specified format
func WriteReport(w io.Writer, report *collector.Report, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteBatch writes a snapshot in the specified format
func WriteBatch(w io.Writer, batch *assembly.Batch, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, &BatchOutput{
			Date:       batch.Date.String(),
			Count:      len(batch.Records),
			Assemblies: batch.Records,
		})
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(batch, now()))
		return err
	case FormatText:
		return writeBatchText(w, batch, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeReportText(w io.Writer, report *collector.Report) error {
	fmt.Fprintf(w, "Run %s (%s, %s): fetched %d records in %s\n",
		report.RunID, report.Source, report.Policy, report.Fetched, report.Duration)

	if g := report.Geocode; g != nil {
		fmt.Fprintf(w, "Geocoded %d/%d places (%d missed, %d failed)\n", g.Resolved, g.Places, g.Missed, g.Failed)
	}

	if len(report.Dates) == 0 {
		fmt.Fprintln(w, "No snapshots written.")
		return nil
	}

	for _, d := range report.Dates {
		fmt.Fprintf(w, "\n%s\n", d.Date)
		writeStoreLine(w, &d.Main)
		if d.District != nil {
			writeStoreLine(w, d.District)
		}
	}
	return nil
}

func writeStoreLine(w io.Writer, sr *collector.StoreReport) {
	fmt.Fprintf(w, "  %s: %d total (%d new, %d enriched, %d kept)\n",
		filepath.Base(sr.Path), sr.Total, sr.Added, sr.Enriched, sr.Retained)
}

func writeBatchText(w io.Writer, batch *assembly.Batch, verbose bool) error {
	if len(batch.Records) == 0 {
		fmt.Fprintf(w, "No assemblies found for %s.\n", batch.Date)
		return nil
	}

	fmt.Fprintf(w, "%s (%d assemblies)\n\n", batch.Date, len(batch.Records))
	for _, rec := range batch.Records {
		line := fmt.Sprintf("%s~%s  %s", rec.StartTime, rec.EndTime, rec.Route(" → "))
		if rec.Headcount != "" {
			line += fmt.Sprintf("  (약 %s명)", rec.Headcount)
		}
		fmt.Fprintln(w, line)

		if rec.Notes != "" {
			fmt.Fprintf(w, "     Notes: %s\n", rec.Notes)
		}
		if verbose {
			for i, loc := range rec.Locations {
				fmt.Fprintf(w, "     %s: %s\n", loc, formatPoint(rec, i))
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d assemblies\n", len(batch.Records))

	return nil
}

// formatPoint renders the i-th coordinate of a record, or "-" when it is unresolved
func formatPoint(rec *assembly.Record, i int) string {
	if i >= len(rec.Latitudes) || i >= len(rec.Longitudes) {
		return "-"
	}
	lat, lon := rec.Latitudes[i], rec.Longitudes[i]
	if lat == nil || lon == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f, %.6f", *lat, *lon)
}
