package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxResponseBytes = 1 << 20

// Nominatim queries the OpenStreetMap Nominatim search endpoint. The public
// instance requires an identifying User-Agent and at most one request per
// second; the rate limit is enforced by the ExternalLayer wrapping this.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewNominatim creates a client for the endpoint at baseURL.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

// Name implements Geocoder.
func (n *Nominatim) Name() string { return "nominatim" }

type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup implements Geocoder. An empty result set and client-error statuses
// mean the place is unknown; throttling and server errors are transient.
func (n *Nominatim) Lookup(ctx context.Context, query string) (*Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("accept-language", "ja")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", hits[0].Lon, err)
	}
	return &Place{DisplayName: hits[0].DisplayName, Lat: lat, Lon: lon}, nil
}
