package kakao

import (
	"fmt"
	"strings"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

// Version is the skill response format version
const Version = "2.0"

// NoAssembliesText is sent when no snapshot exists for today
const NoAssembliesText = "📢 오늘은 등록된 집회 정보가 없습니다."

// Kakao rejects simpleText bodies longer than this
const maxTextRunes = 1000

// Response is a Kakao i Open Builder skill response
type Response struct {
	Version  string   `json:"version"`
	Template Template `json:"template"`
}

// Template holds the outputs shown in the chat
type Template struct {
	Outputs []Output `json:"outputs"`
}

// Output is one chat bubble
type Output struct {
	SimpleText *SimpleText `json:"simpleText,omitempty"`
}

// SimpleText is a plain text bubble
type SimpleText struct {
	Text string `json:"text"`
}

// TextResponse wraps text in a single simpleText bubble
func TextResponse(text string) *Response {
	return &Response{
		Version: Version,
		Template: Template{
			Outputs: []Output{
				{SimpleText: &SimpleText{Text: text}},
			},
		},
	}
}

// FormatRecord renders one assembly as time window, route and headcount lines
func FormatRecord(rec *assembly.Record) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("🕒 %s~%s\n", rec.StartTime, rec.EndTime))
	msg.WriteString(fmt.Sprintf("📍 %s", rec.Route(" - ")))

	if h := strings.TrimSpace(rec.Headcount); h != "" {
		msg.WriteString(fmt.Sprintf("\n👥 약 %s명", h))
	}

	return msg.String()
}

// FormatToday renders the day's assemblies as a single chat message. Records that
// would push the message past Kakao's length limit are summarised in a final line.
func FormatToday(batch *assembly.Batch) string {
	if batch == nil || len(batch.Records) == 0 {
		return NoAssembliesText
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("📢 오늘(%s) 종로구 집회 정보\n", batch.Date))
	msg.WriteString(fmt.Sprintf("총 %d건의 집회가 예정되어 있습니다.\n\n", len(batch.Records)))

	last := len(batch.Records) - 1
	for i, rec := range batch.Records {
		entry := FormatRecord(rec) + "\n\n"
		more := fmt.Sprintf("... 외 %d건", len(batch.Records)-i)

		need := runeLen(entry)
		if i < last {
			need += runeLen(more)
		}
		if runeLen(msg.String())+need > maxTextRunes {
			msg.WriteString(more)
			break
		}
		msg.WriteString(entry)
	}

	return strings.TrimSpace(msg.String())
}

func runeLen(s string) int {
	return len([]rune(s))
}
