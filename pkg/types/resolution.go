// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citemap pipeline.
package types

// ResolutionStatus indicates the terminal outcome of resolving one
// affiliation key. Every cached entry carries one of these; there is no
// pending state.
type ResolutionStatus string

const (
	StatusResolved   ResolutionStatus = "resolved"
	StatusUnresolved ResolutionStatus = "unresolved"
)

// ResolutionSource identifies which layer produced a resolution.
type ResolutionSource string

const (
	// SourceAlias means the canonical location came from the alias table.
	SourceAlias ResolutionSource = "alias"

	// SourceGeocoder means the location came from an external geocoding call.
	SourceGeocoder ResolutionSource = "geocoder"

	// SourceReview means the record was hand-edited through the review
	// CSV workflow and overrides any automatic resolution.
	SourceReview ResolutionSource = "review"
)

// ResolutionRecord is the terminal outcome of resolving one affiliation
// string. Records are keyed by the normalized affiliation key and persisted
// in the resolution cache across runs.
type ResolutionRecord struct {
	// Key is the normalized lookup key derived from the raw affiliation.
	Key string `json:"key"`

	// Raw is the original affiliation string, kept verbatim for review.
	Raw string `json:"raw"`

	// Status is resolved or unresolved. Unresolved entries are terminal:
	// they are not re-geocoded on later runs unless explicitly refreshed.
	Status ResolutionStatus `json:"status"`

	// Location is the canonical "City, Country" label. Empty when unresolved.
	Location string `json:"location,omitempty"`

	// Latitude and Longitude are WGS 84 coordinates. Zero when unresolved.
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lon,omitempty"`

	// Source identifies which layer produced this record.
	Source ResolutionSource `json:"source,omitempty"`
}

// SameOutcome reports whether two records carry identical resolution
// content, ignoring nothing. The cache uses it to skip rewrites.
func (r ResolutionRecord) SameOutcome(other ResolutionRecord) bool {
	return r == other
}

// Point is one aggregated map point: a distinct canonical location with
// the number of affiliations that resolved to it.
type Point struct {
	// Location is the canonical "City, Country" label.
	Location string `json:"location"`

	// Latitude and Longitude are WGS 84 coordinates.
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`

	// Count is the number of distinct raw affiliations that resolved to
	// this location, weighted by occurrence.
	Count int `json:"count"`
}
