package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MinhaKim02/protest-crawling-database/internal/region"
)

const (
	VWorldBaseURL = "https://api.vworld.kr"
	searchPath    = "/req/search"
	addressPath   = "/req/address"

	searchPageSize = "7"
	requestTimeout = 6 * time.Second
	cacheTTL       = 24 * time.Hour
)

// ErrNoKey is returned when geocoding is attempted without a VWorld API key
var ErrNoKey = errors.New("VWorld API key is not set")

// number decodes the coordinate fields VWorld sends as strings or as numbers
type number struct {
	value float64
	ok    bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.value, n.ok = f, true
	return nil
}

type point struct {
	X number `json:"x"`
	Y number `json:"y"`
}

type apiError struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type searchItem struct {
	Title   string `json:"title"`
	Address struct {
		Road   string `json:"road"`
		Parcel string `json:"parcel"`
	} `json:"address"`
	Point point `json:"point"`
}

type searchResponse struct {
	Response struct {
		Status string   `json:"status"`
		Error  apiError `json:"error"`
		Result struct {
			Items []searchItem `json:"items"`
		} `json:"result"`
	} `json:"response"`
}

type addressResponse struct {
	Response struct {
		Status string   `json:"status"`
		Error  apiError `json:"error"`
		Result struct {
			Point point `json:"point"`
		} `json:"result"`
	} `json:"response"`
}

// VWorld geocodes places with the VWorld place search and address APIs
type VWorld struct {
	client *resty.Client
	key    string
	area   region.Area
	delay  time.Duration
	cache  *Cache
}

// NewVWorld creates a VWorld geocoder accepting results inside area.
// delay is waited between uncached requests.
func NewVWorld(key string, area region.Area, delay time.Duration) *VWorld {
	client := resty.New().
		SetBaseURL(VWorldBaseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	return &VWorld{
		client: client,
		key:    key,
		area:   area,
		delay:  delay,
		cache:  NewCache(cacheTTL),
	}
}

// SetBaseURL points the client at another host
func (v *VWorld) SetBaseURL(url string) *VWorld {
	v.client.SetBaseURL(url)
	return v
}

// Cache returns the geocoder's query cache
func (v *VWorld) Cache() *Cache {
	return v.cache
}

// Geocode resolves a place, trying every query candidate until one yields a point
// inside the area. notes supply district and landmark hints. A place that no
// candidate resolves returns nil; the error is set only if some request failed.
func (v *VWorld) Geocode(ctx context.Context, place, notes string) (*Point, error) {
	if strings.TrimSpace(place) == "" {
		return nil, nil
	}
	if v.key == "" {
		return nil, ErrNoKey
	}

	district := region.District(notes)

	var lastErr error
	for _, q := range Candidates(place, notes, v.area) {
		if p, ok := v.cache.Get(q); ok {
			if p != nil {
				return p, nil
			}
			continue
		}

		p, err := v.lookup(ctx, q, district)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("query %q: %w", q, err)
		} else {
			v.cache.Set(q, p)
			if p != nil {
				return p, nil
			}
		}

		if err := v.wait(ctx); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (v *VWorld) wait(ctx context.Context) error {
	if v.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(v.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// lookup tries place search, then road address, then parcel address
func (v *VWorld) lookup(ctx context.Context, query, district string) (*Point, error) {
	p, err := v.search(ctx, query, district)
	if err != nil || p != nil {
		return p, err
	}

	for _, kind := range []string{"road", "parcel"} {
		p, err := v.address(ctx, query, kind)
		if err != nil || p != nil {
			return p, err
		}
	}
	return nil, nil
}

func (v *VWorld) search(ctx context.Context, query, district string) (*Point, error) {
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"service": "search",
			"request": "search",
			"version": "2.0",
			"crs":     "EPSG:4326",
			"format":  "json",
			"type":    "place",
			"size":    searchPageSize,
			"page":    "1",
			"query":   query,
			"key":     v.key,
		}).
		SetResult(&searchResponse{}).
		ForceContentType("application/json").
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("place search: unexpected status code: %d", resp.StatusCode())
	}

	result, ok := resp.Result().(*searchResponse)
	if !ok {
		return nil, errors.New("place search: failed to parse response")
	}
	if result.Response.Status == "ERROR" {
		return nil, fmt.Errorf("place search: %s %s", result.Response.Error.Code, result.Response.Error.Text)
	}

	return v.best(result.Response.Result.Items, query, district), nil
}

// best scores search hits: a Seoul address, the district from the notes, a title
// containing the query and a point inside the area all count. Points outside the
// area's loose bounds are rejected.
func (v *VWorld) best(items []searchItem, query, district string) *Point {
	queryKey := stripSpaces(query)

	var best *Point
	bestScore := -1
	for _, it := range items {
		if !it.Point.X.ok || !it.Point.Y.ok {
			continue
		}
		lat, lon := it.Point.Y.value, it.Point.X.value

		if !v.area.Unrestricted() && !v.area.InLoose(lat, lon) {
			continue
		}

		addr := it.Address.Road
		if addr == "" {
			addr = it.Address.Parcel
		}

		score := 0
		if strings.Contains(addr, "서울") || strings.Contains(addr, "Seoul") {
			score += 10
		}
		if district != "" && strings.Contains(addr, district) {
			score += 4
		}
		if v.area.AddressMatches(addr) {
			score += 3
		}
		if queryKey != "" && strings.Contains(stripSpaces(it.Title), queryKey) {
			score += 2
		}
		if v.area.InTight(lat, lon) {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			best = &Point{Lat: lat, Lon: lon}
		}
	}
	return best
}

func (v *VWorld) address(ctx context.Context, query, kind string) (*Point, error) {
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"service": "address",
			"request": "getCoord",
			"version": "2.0",
			"crs":     "EPSG:4326",
			"format":  "json",
			"type":    kind,
			"address": query,
			"key":     v.key,
		}).
		SetResult(&addressResponse{}).
		ForceContentType("application/json").
		Get(addressPath)
	if err != nil {
		return nil, fmt.Errorf("%s address: %w", kind, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%s address: unexpected status code: %d", kind, resp.StatusCode())
	}

	result, ok := resp.Result().(*addressResponse)
	if !ok {
		return nil, fmt.Errorf("%s address: failed to parse response", kind)
	}
	if result.Response.Status == "ERROR" {
		return nil, fmt.Errorf("%s address: %s %s", kind, result.Response.Error.Code, result.Response.Error.Text)
	}
	if result.Response.Status != "OK" {
		return nil, nil
	}

	pt := result.Response.Result.Point
	if !pt.X.ok || !pt.Y.ok {
		return nil, nil
	}
	lat, lon := pt.Y.value, pt.X.value
	if !v.area.Unrestricted() && !v.area.InLoose(lat, lon) {
		return nil, nil
	}
	return &Point{Lat: lat, Lon: lon}, nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
