// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citemap/internal/httputil"
)

const sampleNominatimJSON = `[
  {
    "lat": "42.3611",
    "lon": "-71.0810",
    "display_name": "Cambridge, Middlesex County, Massachusetts, United States",
    "address": {
      "city": "Cambridge",
      "county": "Middlesex County",
      "state": "Massachusetts",
      "country": "United States"
    }
  }
]`

func testPolicy() httputil.Policy {
	return httputil.Policy{MaxAttempts: 3, BaseDelay: 1 * time.Millisecond}
}

func newTestNominatim(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := nominatimSearchBase
	nominatimSearchBase = ts.URL
	t.Cleanup(func() { nominatimSearchBase = old })

	return &Nominatim{Client: ts.Client(), UserAgent: "citemap-test/0.1", Retry: testPolicy()}
}

func TestNominatim_Geocode(t *testing.T) {
	var gotQuery, gotUA string
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleNominatimJSON))
	})

	loc, err := n.Geocode(context.Background(), "Cambridge, USA")
	require.NoError(t, err)

	assert.Equal(t, "Cambridge, USA", gotQuery)
	assert.Equal(t, "citemap-test/0.1", gotUA)
	assert.Equal(t, "Cambridge, Massachusetts, United States", loc.Label)
	assert.InDelta(t, 42.3611, loc.Latitude, 1e-6)
	assert.InDelta(t, -71.0810, loc.Longitude, 1e-6)
}

func TestNominatim_EmptyResultIsNotFound(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := n.Geocode(context.Background(), "Unknown Institute XYZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatim_RetriesRateLimit(t *testing.T) {
	var calls int32
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(sampleNominatimJSON))
	})

	loc, err := n.Geocode(context.Background(), "Cambridge")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.NotEmpty(t, loc.Label)
}

func TestNominatim_ExhaustedRetriesIsTerminal(t *testing.T) {
	var calls int32
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := n.Geocode(context.Background(), "Cambridge")
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNominatim_LabelFallsBackToQuery(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"lat": "1.5", "lon": "2.5", "address": {}}]`))
	})

	loc, err := n.Geocode(context.Background(), "Somewhere")
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", loc.Label)
}

func TestNominatimAddress_Label(t *testing.T) {
	tests := []struct {
		name string
		addr nominatimAddress
		want string
	}{
		{"city state country", nominatimAddress{City: "Paris", State: "Île-de-France", Country: "France"}, "Paris, Île-de-France, France"},
		{"city country", nominatimAddress{City: "Paris", Country: "France"}, "Paris, France"},
		{"town fallback", nominatimAddress{Town: "Pullman", State: "Washington", Country: "United States"}, "Pullman, Washington, United States"},
		{"village fallback", nominatimAddress{Village: "Hamirpur", Country: "India"}, "Hamirpur, India"},
		{"county fallback", nominatimAddress{County: "Middlesex", Country: "USA"}, "Middlesex, USA"},
		{"state only", nominatimAddress{State: "California", Country: "USA"}, "California, USA"},
		{"country only", nominatimAddress{Country: "France"}, "France"},
		{"empty", nominatimAddress{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.addr.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
