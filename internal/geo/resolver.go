// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/citemap/pkg/types"
)

// Resolver turns raw affiliation strings into ResolutionRecords through a
// layered lookup: resolution cache, alias table, then the external
// geocoder. It owns all cache writes.
type Resolver struct {
	Aliases  *AliasTable
	Cache    *Cache
	Geocoder Geocoder

	// Delay is the pause before each geocoding call after the first,
	// keeping within the provider's usage policy. Cache and alias hits
	// never wait.
	Delay time.Duration
}

// Summary counts resolution outcomes for one run.
type Summary struct {
	CacheHits  int
	AliasHits  int
	Geocoded   int
	Unresolved int
}

// Total returns the number of unique keys processed.
func (s Summary) Total() int {
	return s.CacheHits + s.AliasHits + s.Geocoded + s.Unresolved
}

// Resolve processes every raw affiliation string and returns a mapping of
// raw string to its record, plus outcome counts. Raw strings normalizing
// to the same key are resolved exactly once; keys are processed in sorted
// order so output is reproducible. A geocoding failure degrades that key
// to unresolved and the batch continues; only cache persistence failures
// abort the run.
func (r *Resolver) Resolve(ctx context.Context, raws []string, w io.Writer) (map[string]types.ResolutionRecord, Summary, error) {
	// Dedup by normalized key, remembering the first raw seen per key.
	byKey := make(map[string]string)
	keys := make([]string, 0, len(raws))
	for _, raw := range raws {
		key := Normalize(raw)
		if _, ok := byKey[key]; !ok {
			byKey[key] = raw
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var summary Summary
	records := make(map[string]types.ResolutionRecord, len(keys))

	// Geocode results for identical queries within this run, so several
	// alias entries pointing at one city cost a single lookup.
	located := make(map[string]Location)
	calls := 0

	geocode := func(query string) (Location, error) {
		if loc, ok := located[query]; ok {
			return loc, nil
		}
		if calls > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
				return Location{}, ctx.Err()
			case <-time.After(r.Delay):
			}
		}
		calls++
		loc, err := r.Geocoder.Geocode(ctx, query)
		if err == nil {
			located[query] = loc
		}
		return loc, err
	}

	for _, key := range keys {
		raw := byKey[key]

		if rec, ok := r.Cache.Get(key); ok {
			fmt.Fprintf(w, "cached     %s\n", key)
			records[key] = rec
			summary.CacheHits++
			continue
		}

		var rec types.ResolutionRecord
		if loc, ok := r.Aliases.Lookup(key); ok {
			rec = types.ResolutionRecord{
				Key:      key,
				Raw:      raw,
				Status:   types.StatusResolved,
				Location: loc,
				Source:   types.SourceAlias,
			}
			// The alias gives the label; coordinates still come from the
			// geocoder. A failed lookup keeps the record resolved with
			// the label only.
			if pos, err := geocode(loc); err == nil {
				rec.Latitude = pos.Latitude
				rec.Longitude = pos.Longitude
			} else if ctx.Err() != nil {
				return records, summary, ctx.Err()
			}
			fmt.Fprintf(w, "alias      %s -> %s\n", key, loc)
			summary.AliasHits++
		} else if pos, err := geocode(raw); err == nil {
			rec = types.ResolutionRecord{
				Key:       key,
				Raw:       raw,
				Status:    types.StatusResolved,
				Location:  pos.Label,
				Latitude:  pos.Latitude,
				Longitude: pos.Longitude,
				Source:    types.SourceGeocoder,
			}
			fmt.Fprintf(w, "geocoded   %s -> %s\n", key, pos.Label)
			summary.Geocoded++
		} else {
			if ctx.Err() != nil {
				return records, summary, ctx.Err()
			}
			rec = types.ResolutionRecord{
				Key:    key,
				Raw:    raw,
				Status: types.StatusUnresolved,
				Source: types.SourceGeocoder,
			}
			fmt.Fprintf(w, "unresolved %s (%v)\n", key, err)
			summary.Unresolved++
		}

		if err := r.Cache.Put(key, rec); err != nil {
			return records, summary, fmt.Errorf("persisting %s: %w", key, err)
		}
		records[key] = rec
	}

	fmt.Fprintf(w, "\n%d keys: %d cached, %d alias, %d geocoded, %d unresolved\n",
		summary.Total(), summary.CacheHits, summary.AliasHits, summary.Geocoded, summary.Unresolved)

	// Expand back to the raw-string view the aggregator consumes.
	out := make(map[string]types.ResolutionRecord, len(raws))
	for _, raw := range raws {
		out[raw] = records[Normalize(raw)]
	}
	return out, summary, nil
}
