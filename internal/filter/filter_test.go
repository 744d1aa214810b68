package filter

import (
	"testing"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

var testDate = assembly.Date{Year: 2025, Month: 8, Day: 22}

func record(start, end, headcount, notes string, places ...string) *assembly.Record {
	r := assembly.NewRecord(testDate, start, end, places)
	r.Headcount = headcount
	r.Notes = notes
	return r
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"empty filter", NewFilter(), true},
		{"filter with place", &Filter{Places: []string{"광화문"}}, false},
		{"filter with window end", &Filter{To: "12:00"}, false},
		{"filter with jongno only", &Filter{JongnoOnly: true}, false},
		{"filter with headcount", &Filter{MinHeadcount: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Matches(t *testing.T) {
	gwanghwamun := record("09:00", "12:00", "1,000", "종로서", "광화문 광장", "종각역")
	yeouido := record("14:00", "16:00", "300", "영등포서", "여의도공원")
	unknown := record("", "", "", "", "서울역")

	tests := []struct {
		name   string
		filter *Filter
		rec    *assembly.Record
		want   bool
	}{
		{"empty filter matches", NewFilter(), yeouido, true},
		{"place ignores spacing", &Filter{Places: []string{"광화문광장"}}, gwanghwamun, true},
		{"place matches later token", &Filter{Places: []string{"종각"}}, gwanghwamun, true},
		{"place mismatch", &Filter{Places: []string{"광화문"}}, yeouido, false},
		{"district via police station", &Filter{Districts: []string{"종로구"}}, gwanghwamun, true},
		{"district mismatch", &Filter{Districts: []string{"종로구"}}, yeouido, false},
		{"window overlaps start", &Filter{From: "11:00", To: "13:00"}, gwanghwamun, true},
		{"window after end", &Filter{From: "12:30"}, gwanghwamun, false},
		{"window before start", &Filter{To: "13:00"}, yeouido, false},
		{"no start time never matches window", &Filter{From: "00:00"}, unknown, false},
		{"jongno only", &Filter{JongnoOnly: true}, gwanghwamun, true},
		{"jongno only excludes yeouido", &Filter{JongnoOnly: true}, yeouido, false},
		{"headcount with comma", &Filter{MinHeadcount: 500}, gwanghwamun, true},
		{"headcount too small", &Filter{MinHeadcount: 500}, yeouido, false},
		{"unknown headcount", &Filter{MinHeadcount: 1}, unknown, false},
		{
			name:   "all criteria",
			filter: &Filter{Places: []string{"종각"}, From: "10:00", JongnoOnly: true, MinHeadcount: 1000},
			rec:    gwanghwamun,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.rec); got != tt.want {
				t.Errorf("Filter.Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	records := []*assembly.Record{
		record("09:00", "12:00", "", "", "광화문"),
		record("14:00", "16:00", "", "", "여의도공원"),
		record("15:00", "17:00", "", "", "광화문"),
	}

	if got := NewFilter().Apply(records); len(got) != 3 {
		t.Errorf("empty filter should return every record, got %d", len(got))
	}

	f := &Filter{Places: []string{"광화문"}, From: "13:00"}
	got := f.Apply(records)
	if len(got) != 1 || got[0] != records[2] {
		t.Errorf("Apply() = %v, want only the afternoon Gwanghwamun record", got)
	}
}

func TestFilter_String(t *testing.T) {
	if got := NewFilter().String(); got != "all assemblies" {
		t.Errorf("String() = %q", got)
	}

	f := &Filter{Places: []string{"광화문"}, From: "09:00", To: "12:00", JongnoOnly: true}
	want := "place: 광화문; time: 09:00-12:00; Jongno only"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHeadcount(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"1,000", 1000, true},
		{" 300 ", 300, true},
		{"", 0, false},
		{"다수", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Headcount(tt.text)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Headcount(%q) = (%d, %v), want (%d, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}
