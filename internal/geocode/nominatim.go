// Package geocode resolve endereços em coordenadas via Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rotaflow/field-scheduler/internal/geo"
)

type Nominatim struct {
	session *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewNominatim(baseURL string, log zerolog.Logger) *Nominatim {
	return &Nominatim{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode retorna o melhor resultado para o endereço. Endereço sem
// correspondência é erro; o chamador decide se cai em fallback.
func (n *Nominatim) Geocode(ctx context.Context, address string) (geo.Point, error) {
	address = strings.Join(strings.Fields(address), " ")
	if address == "" {
		return geo.Point{}, fmt.Errorf("geocode: empty address")
	}

	endpoint := fmt.Sprintf("%s/search?%s", n.baseURL, url.Values{
		"q":      {address},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "field-scheduler/1.0")

	resp, err := n.session.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return geo.Point{}, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Point{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return geo.Point{}, fmt.Errorf("geocode: no results for %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode: parse lon: %w", err)
	}

	return geo.Point{Lon: lon, Lat: lat}, nil
}
