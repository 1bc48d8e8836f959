// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"errors"
)

// Location is a successful geocoding result.
type Location struct {
	// Label is the canonical "City, Country" (or "City, State, Country")
	// name built from the provider's address components.
	Label string

	// Latitude and Longitude are WGS 84 coordinates.
	Latitude  float64
	Longitude float64
}

// ErrNotFound is returned when the provider has no match for a query.
// It is terminal: the Resolver records the key as unresolved rather than
// retrying.
var ErrNotFound = errors.New("location not found")

// Geocoder translates a place or institution name into coordinates.
// Implementations own their retry/backoff behavior; an error returned here
// is terminal for the query. Ambiguous queries resolve to the provider's
// highest-ranked match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Location, error)
}
