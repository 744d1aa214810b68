package assembly

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeStrings(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"empty array", "[]", nil, false},
		{"json array", `["광화문", "종각역"]`, []string{"광화문", "종각역"}, false},
		{"legacy single place", "세종문화회관 앞", []string{"세종문화회관 앞"}, false},
		{"blank entries dropped", `["광화문", "", null]`, []string{"광화문"}, false},
		{"malformed", `["광화문", `, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStrings(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeStrings(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeStrings(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDecodeCoords(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string // re-encoded
		wantErr bool
	}{
		{"empty", "", "", false},
		{"numbers", "[37.57, 126.97]", "[37.57,126.97]", false},
		{"nulls kept in place", "[null, 37.5]", "[null,37.5]", false},
		{"numeric strings", `["37.5", "None"]`, "[37.5,null]", false},
		{"not json", "37.5", "", true},
		{"bad string", `["north"]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCoords(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeCoords(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if encoded := EncodeCoords(got); encoded != tt.want {
				t.Errorf("DecodeCoords(%q) = %s, want %s", tt.text, encoded, tt.want)
			}
		})
	}
}

func TestFromRow(t *testing.T) {
	t.Run("well formed row", func(t *testing.T) {
		rec := NewRecord(testDate, "09:00", "11:00", []string{"광화문", "종각역"})
		rec.Headcount = "200"
		rec.Latitudes = []*float64{Float(37.57), nil}
		rec.Longitudes = []*float64{Float(126.97), nil}
		rec.Notes = "행진"

		got, errs := FromRow(rec.Row())
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if !reflect.DeepEqual(got, rec) {
			t.Errorf("FromRow(Row()) = %+v, want %+v", got, rec)
		}
	})

	t.Run("malformed list becomes empty", func(t *testing.T) {
		row := map[string]string{
			"year": "2024", "month": "05", "day": "01",
			"start_time": "09:00", "end_time": "11:00",
			"locations":  `["광화문"]`,
			"latitudes":  "[37.57,",
			"longitudes": "[126.97]",
		}

		got, errs := FromRow(row)
		if got.Latitudes != nil {
			t.Errorf("expected malformed latitudes to be empty, got %s", EncodeCoords(got.Latitudes))
		}
		if len(errs) == 0 {
			t.Fatal("expected a field error")
		}
		var fe *FieldError
		if !errors.As(errs[0], &fe) || fe.Field != "latitudes" {
			t.Errorf("expected FieldError for latitudes, got %v", errs[0])
		}
	})

	t.Run("misaligned coordinates dropped", func(t *testing.T) {
		row := map[string]string{
			"year": "2024", "month": "5", "day": "1",
			"locations":  `["광화문", "종각역"]`,
			"latitudes":  "[37.57]",
			"longitudes": "[126.97]",
		}

		got, errs := FromRow(row)
		if got.Latitudes != nil || got.Longitudes != nil {
			t.Error("expected misaligned coordinates to be dropped")
		}
		if len(errs) != 1 {
			t.Errorf("expected 1 error, got %d", len(errs))
		}
	})
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"year", "year"},
		{"\ufeff년", "year"},
		{"장소", "locations"},
		{"Start_Time", "start_time"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := CanonicalColumn(tt.header); got != tt.want {
				t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
