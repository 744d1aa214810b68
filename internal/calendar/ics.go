package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

// uidNamespace scopes event UIDs so the same assembly always gets the same UID
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/MinhaKim02/protest-crawling-database"))

// defaultDuration is used when an assembly has no usable end time
const defaultDuration = time.Hour

// GenerateICS generates an iCalendar (.ics) file with one event per assembly in the batch
func GenerateICS(batch *assembly.Batch, now time.Time) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//protest-crawling-database//assemblies//KO\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS("집회 일정 "+batch.Date.String())))

	for _, rec := range batch.Records {
		writeEvent(&ics, rec, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// EventUID returns the stable UID of an assembly's calendar event
func EventUID(rec *assembly.Record) string {
	return uuid.NewSHA1(uidNamespace, []byte(rec.IdentityKey())).String()
}

func writeEvent(ics *strings.Builder, rec *assembly.Record, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s\r\n", EventUID(rec)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	date := rec.Date()
	start, ok := date.At(rec.StartTime)
	if ok {
		end, endOK := date.At(rec.EndTime)
		if !endOK || !end.After(start) {
			end = start.Add(defaultDuration)
		}
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))
	} else {
		// No clock time: all-day event
		day := time.Date(date.Year, time.Month(date.Month), date.Day, 0, 0, 0, 0, time.UTC)
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))
	}

	summary := "집회"
	if len(rec.Locations) > 0 {
		summary = fmt.Sprintf("집회 - %s", rec.Locations[0])
	}
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	var desc []string
	if route := rec.Route(" → "); route != "" {
		desc = append(desc, "경로: "+route)
	}
	if rec.Headcount != "" {
		desc = append(desc, fmt.Sprintf("신고 인원: %s명", rec.Headcount))
	}
	if rec.Notes != "" {
		desc = append(desc, rec.Notes)
	}
	if len(desc) > 0 {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(strings.Join(desc, "\n"))))
	}

	if route := rec.Route(" - "); route != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(route)))
	}
	if lat, lon, ok := firstPoint(rec); ok {
		ics.WriteString(fmt.Sprintf("GEO:%.6f;%.6f\r\n", lat, lon))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// firstPoint returns the first resolved coordinate of the route
func firstPoint(rec *assembly.Record) (float64, float64, bool) {
	if len(rec.Latitudes) != len(rec.Longitudes) {
		return 0, 0, false
	}
	for i := range rec.Latitudes {
		if rec.Latitudes[i] != nil && rec.Longitudes[i] != nil {
			return *rec.Latitudes[i], *rec.Longitudes[i], true
		}
	}
	return 0, 0, false
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
