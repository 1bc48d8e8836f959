// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/citemap/pkg/types"
)

// FetchResult holds the outcome of a fetch run.
type FetchResult struct {
	Works        int
	CitingPapers int
	Affiliations int
	Failed       int
}

// HasFailures reports whether any work's citations failed to fetch.
func (r FetchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetch pulls the author's top-cited works and their citing papers from
// OpenAlex into the store. Per-work fetch failures are reported and the
// batch continues; store write failures abort the run. A delay between
// works keeps within the API's rate expectations.
func Fetch(ctx context.Context, client *Client, store *Store, cfg types.FetchConfig, w io.Writer) (FetchResult, error) {
	var result FetchResult

	works, err := client.TopWorks(ctx, cfg.AuthorID, cfg.MaxWorks)
	if err != nil {
		return result, fmt.Errorf("fetching works for %s: %w", cfg.AuthorID, err)
	}
	if len(works) == 0 {
		return result, fmt.Errorf("no works found for author %s", cfg.AuthorID)
	}

	affiliations := make(map[string]struct{})

	for i, work := range works {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.RequestDelay):
			}
		}

		if err := store.UpsertWork(ctx, work); err != nil {
			return result, err
		}
		result.Works++

		fmt.Fprintf(w, "fetching citations: %s (%d citations)\n", work.Title, work.CitedByCount)

		papers, err := client.CitingPapers(ctx, work.ID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			fmt.Fprintf(w, "  warning: citations of %s failed: %v\n", work.ID, err)
			result.Failed++
			continue
		}

		for _, p := range papers {
			if err := store.UpsertCitingPaper(ctx, p); err != nil {
				return result, err
			}
			result.CitingPapers++
			for _, a := range p.Affiliations {
				affiliations[a] = struct{}{}
			}
		}
	}

	result.Affiliations = len(affiliations)
	fmt.Fprintf(w, "\n%d works, %d citing papers, %d distinct affiliations",
		result.Works, result.CitingPapers, result.Affiliations)
	if result.Failed > 0 {
		fmt.Fprintf(w, ", %d works failed", result.Failed)
	}
	fmt.Fprintln(w)

	return result, nil
}
