// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mapdata writes the aggregated point dataset for downstream map
// rendering, plus the unresolved list for manual review.
package mapdata

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citemap/pkg/types"
)

// GeoJSON structures, trimmed to what a point dataset needs.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// WriteGeoJSON writes the points as a GeoJSON FeatureCollection. Each
// feature carries the location label and count as properties; coordinates
// are [lon, lat] per the GeoJSON spec.
func WriteGeoJSON(points []types.Point, w io.Writer) error {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, p := range points {
		// A point without coordinates (alias label whose geocode failed)
		// has nothing to plot; it appears only in the table output.
		if p.Latitude == 0 && p.Longitude == 0 {
			continue
		}
		fc.Features = append(fc.Features, feature{
			Type: "Feature",
			Geometry: geometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Longitude, p.Latitude},
			},
			Properties: map[string]any{
				"location": p.Location,
				"count":    p.Count,
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

// FormatTable writes the points as a human-readable table.
func FormatTable(points []types.Point, unresolved []string, w io.Writer) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No resolved locations.")
	} else {
		fmt.Fprintf(w, "%-40s  %9s  %9s  %5s\n", "Location", "Lat", "Lon", "Count")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		for _, p := range points {
			loc := p.Location
			if len(loc) > 40 {
				loc = loc[:37] + "..."
			}
			fmt.Fprintf(w, "%-40s  %9.4f  %9.4f  %5d\n", loc, p.Latitude, p.Longitude, p.Count)
		}
		fmt.Fprintf(w, "\n%d locations\n", len(points))
	}

	if len(unresolved) > 0 {
		fmt.Fprintf(w, "%d unresolved affiliations (see the unresolved list)\n", len(unresolved))
	}
}

// WriteUnresolved writes the unresolved raw strings one per line, the
// format the review workflow expects.
func WriteUnresolved(unresolved []string, w io.Writer) error {
	for _, raw := range unresolved {
		if _, err := fmt.Fprintln(w, raw); err != nil {
			return err
		}
	}
	return nil
}
