// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"sort"
	"strings"

	"github.com/pdiddy/citemap/pkg/types"
)

// Aggregate groups resolved records by canonical location and counts the
// affiliations that map to each. records is the raw-string view produced
// by Resolver.Resolve; weights gives the number of occurrences per raw
// string (a nil map counts each raw string once). Counts are
// affiliation-level: a location's count is the number of citing-author
// affiliation occurrences that resolved to it, not the number of citing
// papers.
//
// Locations compare case-insensitively after key normalization, so
// "Paris, France" and "paris, france" fold into one point. Points are
// ordered by count descending, then location ascending; the unresolved
// raw strings come back deduplicated and sorted, verbatim for review.
func Aggregate(records map[string]types.ResolutionRecord, weights map[string]int) ([]types.Point, []string) {
	buckets := make(map[string]*types.Point)
	unresolvedSet := make(map[string]struct{})

	// Records are visited in raw-string order so label and coordinate
	// choices never depend on map iteration.
	raws := make([]string, 0, len(records))
	for raw := range records {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	for _, raw := range raws {
		rec := records[raw]
		weight := 1
		if weights != nil {
			if n, ok := weights[raw]; ok && n > 0 {
				weight = n
			}
		}

		if rec.Status != types.StatusResolved || rec.Location == "" {
			unresolvedSet[raw] = struct{}{}
			continue
		}

		locKey := Normalize(rec.Location)
		p, ok := buckets[locKey]
		if !ok {
			p = &types.Point{Location: rec.Location}
			buckets[locKey] = p
		}
		p.Count += weight
		// When casings differ, keep the lexicographically smallest label
		// so output does not depend on map iteration order.
		if rec.Location < p.Location {
			p.Location = rec.Location
			if rec.Latitude != 0 || rec.Longitude != 0 {
				p.Latitude = rec.Latitude
				p.Longitude = rec.Longitude
			}
		}
		if p.Latitude == 0 && p.Longitude == 0 {
			p.Latitude = rec.Latitude
			p.Longitude = rec.Longitude
		}
	}

	points := make([]types.Point, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return strings.ToLower(points[i].Location) < strings.ToLower(points[j].Location)
	})

	unresolved := make([]string, 0, len(unresolvedSet))
	for raw := range unresolvedSet {
		unresolved = append(unresolved, raw)
	}
	sort.Strings(unresolved)

	return points, unresolved
}
