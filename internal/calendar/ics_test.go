package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

var (
	testDate = assembly.Date{Year: 2025, Month: 8, Day: 22}
	testNow  = time.Date(2025, 8, 22, 6, 0, 0, 0, time.UTC)
)

func TestGenerateICS(t *testing.T) {
	rec := assembly.NewRecord(testDate, "09:00", "12:00", []string{"광화문광장", "종각역"})
	rec.Headcount = "1,000"
	rec.Notes = "종로서"
	rec.Latitudes = []*float64{assembly.Float(37.5725), nil}
	rec.Longitudes = []*float64{assembly.Float(126.9769), nil}

	batch := assembly.NewBatch(testDate)
	batch.Records = append(batch.Records, rec)

	ics := GenerateICS(batch, testNow)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//protest-crawling-database//assemblies//KO",
		"X-WR-CALNAME:집회 일정 2025-08-22",
		"BEGIN:VEVENT",
		"UID:" + EventUID(rec),
		"DTSTAMP:20250822T060000Z",
		// 09:00 KST
		"DTSTART:20250822T000000Z",
		"DTEND:20250822T030000Z",
		"SUMMARY:집회 - 광화문광장",
		"DESCRIPTION:경로: 광화문광장 → 종각역\\n신고 인원: 1\\,000명\\n종로서",
		"LOCATION:광화문광장 - 종각역",
		"GEO:37.572500;126.976900",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_Times(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{
			name:  "missing end gets default duration",
			start: "14:00",
			want:  []string{"DTSTART:20250822T050000Z", "DTEND:20250822T060000Z"},
		},
		{
			name:  "end before start gets default duration",
			start: "20:00",
			end:   "02:00",
			want:  []string{"DTSTART:20250822T110000Z", "DTEND:20250822T120000Z"},
		},
		{
			name:  "no start time is all day",
			start: "",
			want:  []string{"DTSTART;VALUE=DATE:20250822", "DTEND;VALUE=DATE:20250823"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := assembly.NewBatch(testDate)
			batch.Records = append(batch.Records, assembly.NewRecord(testDate, tt.start, tt.end, []string{"보신각"}))

			ics := GenerateICS(batch, testNow)
			for _, w := range tt.want {
				if !strings.Contains(ics, w) {
					t.Errorf("ICS missing %s:\n%s", w, ics)
				}
			}
		})
	}
}

func TestGenerateICS_MultipleEvents(t *testing.T) {
	batch := assembly.NewBatch(testDate)
	batch.Records = append(batch.Records,
		assembly.NewRecord(testDate, "09:00", "10:00", []string{"광화문"}),
		assembly.NewRecord(testDate, "11:00", "12:00", []string{"종각역"}),
		assembly.NewRecord(testDate, "13:00", "14:00", []string{"보신각"}),
	)

	ics := GenerateICS(batch, testNow)

	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("Expected 3 BEGIN:VEVENT, got %d", n)
	}
	if n := strings.Count(ics, "END:VEVENT"); n != 3 {
		t.Errorf("Expected 3 END:VEVENT, got %d", n)
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	ics := GenerateICS(assembly.NewBatch(testDate), testNow)

	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Error("empty batch should have no events")
	}
	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("calendar should still be closed")
	}
}

func TestEventUID(t *testing.T) {
	a := assembly.NewRecord(testDate, "09:00", "10:00", []string{"광화문"})
	b := assembly.NewRecord(testDate, "09:00", "10:00", []string{"광화문"})
	b.Headcount = "300"
	c := assembly.NewRecord(testDate, "09:00", "10:00", []string{"종각역"})

	if EventUID(a) != EventUID(b) {
		t.Error("records with the same identity should share a UID")
	}
	if EventUID(a) == EventUID(c) {
		t.Error("different routes should get different UIDs")
	}
}

func TestEscapeICS(t *testing.T) {
	got := escapeICS("a;b,c\\d\ne")
	want := `a\;b\,c\\d\ne`
	if got != want {
		t.Errorf("escapeICS() = %q, want %q", got, want)
	}
}
