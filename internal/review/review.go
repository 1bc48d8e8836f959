// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review materializes resolution records as CSV for hand editing
// and reads the edited rows back into the cache. CSV opens in any
// spreadsheet tool, which is all the manual-correction workflow needs.
package review

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/citemap/internal/geo"
	"github.com/pdiddy/citemap/pkg/types"
)

var header = []string{"raw", "key", "status", "location", "lat", "lon", "source"}

// Export writes every cached record as CSV, ordered by key so diffs
// between review rounds stay readable.
func Export(cache *geo.Cache, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, key := range cache.Keys() {
		rec, _ := cache.Get(key)
		row := []string{
			rec.Raw,
			rec.Key,
			string(rec.Status),
			rec.Location,
			formatCoord(rec.Latitude),
			formatCoord(rec.Longitude),
			string(rec.Source),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImportSummary counts the outcomes of a review import.
type ImportSummary struct {
	Updated int
	Cleared int
	Skipped int
}

// Import reads edited CSV rows and applies them to the cache. Rows whose
// content differs from the cached record are stored with source=review,
// overriding the automatic resolution; the resolver then treats them as
// cache hits. A row with an empty status clears the entry so the next run
// resolves the key afresh. Unchanged rows are skipped. Malformed rows are
// errors: a reviewer's edit silently dropped is worse than a loud failure.
func Import(cache *geo.Cache, r io.Reader) (ImportSummary, error) {
	var summary ImportSummary

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return summary, fmt.Errorf("reading review CSV: %w", err)
	}
	if len(rows) == 0 {
		return summary, fmt.Errorf("review CSV is empty")
	}
	if rows[0][0] != header[0] {
		return summary, fmt.Errorf("review CSV missing header row")
	}

	for i, row := range rows[1:] {
		line := i + 2

		raw, key := row[0], row[1]
		if key == "" {
			key = geo.Normalize(raw)
		}

		status := types.ResolutionStatus(row[2])
		if status == "" {
			if err := cache.Delete(key); err != nil {
				return summary, err
			}
			summary.Cleared++
			continue
		}
		if status != types.StatusResolved && status != types.StatusUnresolved {
			return summary, fmt.Errorf("line %d: unknown status %q", line, row[2])
		}

		lat, err := parseCoord(row[4])
		if err != nil {
			return summary, fmt.Errorf("line %d: bad latitude: %w", line, err)
		}
		lon, err := parseCoord(row[5])
		if err != nil {
			return summary, fmt.Errorf("line %d: bad longitude: %w", line, err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return summary, fmt.Errorf("line %d: coordinates out of range: %s, %s", line, row[4], row[5])
		}

		rec := types.ResolutionRecord{
			Key:       key,
			Raw:       raw,
			Status:    status,
			Location:  row[3],
			Latitude:  lat,
			Longitude: lon,
			Source:    types.SourceReview,
		}

		if prev, ok := cache.Get(key); ok && sameEdit(prev, rec) {
			summary.Skipped++
			continue
		}
		if err := cache.Put(key, rec); err != nil {
			return summary, err
		}
		summary.Updated++
	}

	return summary, nil
}

// sameEdit reports whether the edited row carries the same resolution
// content as the cached record, ignoring the source field so an untouched
// export row does not rewrite every entry as reviewed.
func sameEdit(prev, edited types.ResolutionRecord) bool {
	prev.Source = edited.Source
	return prev.SameOutcome(edited)
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
