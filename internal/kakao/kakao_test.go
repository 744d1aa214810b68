package kakao

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

var testDate = assembly.Date{Year: 2025, Month: 8, Day: 22}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name      string
		headcount string
		want      string
	}{
		{
			name:      "with headcount",
			headcount: "1,000",
			want:      "🕒 09:00~12:00\n📍 광화문광장 - 종각역\n👥 약 1,000명",
		},
		{
			name: "without headcount",
			want: "🕒 09:00~12:00\n📍 광화문광장 - 종각역",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := assembly.NewRecord(testDate, "09:00", "12:00", []string{"광화문광장", "종각역"})
			rec.Headcount = tt.headcount
			if got := FormatRecord(rec); got != tt.want {
				t.Errorf("FormatRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatToday(t *testing.T) {
	batch := assembly.NewBatch(testDate)
	batch.Records = append(batch.Records,
		assembly.NewRecord(testDate, "09:00", "12:00", []string{"광화문광장", "종각역"}),
		assembly.NewRecord(testDate, "14:00", "16:00", []string{"보신각"}),
	)
	batch.Records[1].Headcount = "300"

	want := "📢 오늘(2025-08-22) 종로구 집회 정보\n" +
		"총 2건의 집회가 예정되어 있습니다.\n\n" +
		"🕒 09:00~12:00\n📍 광화문광장 - 종각역\n\n" +
		"🕒 14:00~16:00\n📍 보신각\n👥 약 300명"

	if got := FormatToday(batch); got != want {
		t.Errorf("FormatToday() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatToday_Empty(t *testing.T) {
	if got := FormatToday(nil); got != NoAssembliesText {
		t.Errorf("FormatToday(nil) = %q", got)
	}
	if got := FormatToday(assembly.NewBatch(testDate)); got != NoAssembliesText {
		t.Errorf("FormatToday(empty) = %q", got)
	}
}

func TestFormatToday_Truncates(t *testing.T) {
	batch := assembly.NewBatch(testDate)
	for i := 0; i < 60; i++ {
		place := fmt.Sprintf("서울특별시 종로구 세종대로 %d번지 앞 인도", i)
		batch.Records = append(batch.Records, assembly.NewRecord(testDate, "09:00", "18:00", []string{place}))
	}

	got := FormatToday(batch)
	if n := len([]rune(got)); n > maxTextRunes {
		t.Errorf("message has %d runes, limit is %d", n, maxTextRunes)
	}
	if !strings.Contains(got, "총 60건") {
		t.Error("header should count every record")
	}
	if !strings.Contains(got, "... 외 ") {
		t.Error("truncated message should summarise the remaining records")
	}
}

func TestTextResponse(t *testing.T) {
	data, err := json.Marshal(TextResponse("안녕"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"version":"2.0","template":{"outputs":[{"simpleText":{"text":"안녕"}}]}}`
	if string(data) != want {
		t.Errorf("TextResponse JSON = %s, want %s", data, want)
	}
}
