package region

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
)

// Bounds is an axis-aligned lat/lon box
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Area describes where geocoding results are accepted and how queries are prefixed
type Area struct {
	Name string
	// Prefixes are prepended to place names when building search queries
	Prefixes []string
	// AddressKeywords mark a search result's address as inside the area
	AddressKeywords []string
	// Tight boxes are preferred; Loose boxes are the acceptance limit
	Tight []Bounds
	Loose []Bounds
}

// InTight reports whether the point is inside any tight box
func (a Area) InTight(lat, lon float64) bool {
	return anyContains(a.Tight, lat, lon)
}

// InLoose reports whether the point is inside any loose box
func (a Area) InLoose(lat, lon float64) bool {
	return anyContains(a.Loose, lat, lon)
}

// AddressMatches reports whether an address names the area
func (a Area) AddressMatches(address string) bool {
	for _, k := range a.AddressKeywords {
		if strings.Contains(address, k) {
			return true
		}
	}
	return false
}

func anyContains(boxes []Bounds, lat, lon float64) bool {
	for _, b := range boxes {
		if b.Contains(lat, lon) {
			return true
		}
	}
	return false
}

var (
	jongnoTight = Bounds{MinLat: 37.565, MinLon: 126.95, MaxLat: 37.605, MaxLon: 127.01}
	jongnoLoose = Bounds{MinLat: 37.55, MinLon: 126.94, MaxLat: 37.62, MaxLon: 127.04}
	jungTight   = Bounds{MinLat: 37.548, MinLon: 126.965, MaxLat: 37.575, MaxLon: 127.02}
	jungLoose   = Bounds{MinLat: 37.54, MinLon: 126.955, MaxLat: 37.585, MaxLon: 127.04}
	seoulBounds = Bounds{MinLat: 37.413, MinLon: 126.734, MaxLat: 37.715, MaxLon: 127.269}
)

// JongnoJung covers Jongno-gu and Jung-gu, where the SPATIC board's assemblies are held
var JongnoJung = Area{
	Name:            "jongno-jung",
	Prefixes:        []string{"서울 종로구", "서울 중구", "서울"},
	AddressKeywords: []string{"종로구", "중구"},
	Tight:           []Bounds{jongnoTight, jungTight},
	Loose:           []Bounds{jongnoLoose, jungLoose},
}

// Seoul covers the whole city, used for the police agency's city-wide schedule
var Seoul = Area{
	Name:            "seoul",
	Prefixes:        []string{"서울"},
	AddressKeywords: []string{"서울", "Seoul"},
	Tight:           []Bounds{seoulBounds},
	Loose:           []Bounds{seoulBounds},
}

// Anywhere accepts every result; used when the Seoul filter is switched off
var Anywhere = Area{
	Name:     "anywhere",
	Prefixes: []string{"서울"},
}

// Unrestricted reports whether the area accepts results everywhere
func (a Area) Unrestricted() bool {
	return len(a.Loose) == 0
}

var districtPattern = regexp.MustCompile(`(종로구|중구|용산구|성동구|광진구|동대문구|중랑구|성북구|강북구|도봉구|노원구|은평구|서대문구|마포구|양천구|강서구|구로구|금천구|영등포구|동작구|관악구|서초구|강남구|송파구|강동구)`)

// policeStations maps police station abbreviations to the district they serve.
// Names ending in 대문서 come first.
var policeStations = []struct {
	station  string
	district string
}{
	{"서대문서", "서대문구"},
	{"동대문서", "동대문구"},
	{"남대문서", "중구"},
	{"영등포서", "영등포구"},
	{"종로서", "종로구"},
	{"중부서", "중구"},
	{"용산서", "용산구"},
	{"마포서", "마포구"},
	{"동작서", "동작구"},
	{"관악서", "관악구"},
	{"금천서", "금천구"},
	{"구로서", "구로구"},
	{"강서서", "강서구"},
	{"양천서", "양천구"},
	{"강남서", "강남구"},
	{"서초서", "서초구"},
	{"송파서", "송파구"},
	{"강동서", "강동구"},
	{"성북서", "성북구"},
	{"노원서", "노원구"},
	{"도봉서", "도봉구"},
	{"강북서", "강북구"},
	{"성동서", "성동구"},
	{"광진서", "광진구"},
	{"은평서", "은평구"},
}

// District extracts a Seoul district from free text: an explicit district name, or
// the police station handling the assembly. Returns "" if none is found.
func District(text string) string {
	if text == "" {
		return ""
	}
	if m := districtPattern.FindString(text); m != "" {
		return m
	}
	for _, p := range policeStations {
		if strings.Contains(text, p.station) {
			return p.district
		}
	}
	return ""
}

// JongnoKeywords are landmarks, stations and roads inside Jongno-gu
var JongnoKeywords = []string{
	"종로", "종로구", "종로구청",
	"광화문", "광화문광장", "세종문화회관", "정부서울청사", "경복궁",
	"삼청동", "청운동", "부암동", "인사동", "익선동", "계동", "와룡동",
	"사직로", "율곡로", "자하문로",
	"경복궁역", "광화문역", "안국역", "종각역", "종로3가역", "종로5가역",
	"흥인지문",
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func hasKeyword(text string, keywords []string) bool {
	t := stripSpaces(text)
	for _, k := range keywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// InJongno reports whether an assembly takes place in Jongno-gu: a geocoded
// location inside the Jongno boxes, notes naming the district or its police
// station, or a Jongno landmark in the locations or notes.
func InJongno(rec *assembly.Record) bool {
	if len(rec.Latitudes) == len(rec.Longitudes) {
		for i := range rec.Latitudes {
			lat, lon := rec.Latitudes[i], rec.Longitudes[i]
			if lat == nil || lon == nil {
				continue
			}
			if jongnoTight.Contains(*lat, *lon) || jongnoLoose.Contains(*lat, *lon) {
				return true
			}
		}
	}

	if District(rec.Notes) == "종로구" {
		return true
	}

	return hasKeyword(rec.Notes, JongnoKeywords) ||
		hasKeyword(strings.Join(rec.Locations, " "), JongnoKeywords)
}
