// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citemap/internal/httputil"
)

// nominatimSearchBase is the Nominatim search endpoint. Declared as a var
// so tests can substitute an httptest server.
var nominatimSearchBase = "https://nominatim.openstreetmap.org/search"

// Nominatim geocodes place names through the OpenStreetMap Nominatim API.
// Transient failures (network errors, 429, 5xx) are retried per the
// policy; "no results" is terminal and surfaces as ErrNotFound.
type Nominatim struct {
	Client *http.Client

	// UserAgent identifies the application; Nominatim's usage policy
	// requires a meaningful one.
	UserAgent string

	// Retry bounds attempts for rate-limited or failing requests.
	Retry httputil.Policy
}

// Geocode looks up query and returns the highest-ranked match. Nominatim
// returns results ordered by importance, so the first entry wins; no
// disambiguation happens at this layer.
func (n *Nominatim) Geocode(ctx context.Context, query string) (Location, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}
	reqURL := nominatimSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := httputil.Do(ctx, n.Client, req, n.Retry)
	if err != nil {
		return Location{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("nominatim returned HTTP %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Location{}, fmt.Errorf("parsing nominatim response: %w", err)
	}
	if len(places) == 0 {
		return Location{}, ErrNotFound
	}

	place := places[0]
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("parsing latitude %q: %w", place.Lat, err)
	}
	lon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("parsing longitude %q: %w", place.Lon, err)
	}

	label := place.Address.Label()
	if label == "" {
		label = query
	}

	return Location{Label: label, Latitude: lat, Longitude: lon}, nil
}

// Nominatim API JSON structures.
type nominatimPlace struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// Label builds a "City, State, Country" style label, falling back through
// smaller settlement types when the city field is empty.
func (a nominatimAddress) Label() string {
	city := a.City
	for _, alt := range []string{a.Town, a.Village, a.Municipality, a.County} {
		if city != "" {
			break
		}
		city = alt
	}

	var parts []string
	for _, p := range []string{city, a.State, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
