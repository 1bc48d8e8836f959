// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar fetches citation metadata from OpenAlex and persists it
// for the resolution pipeline. It is glue around the external data source:
// the interesting logic lives in internal/geo.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

const citingPageSize = 200

// Client queries the OpenAlex API.
type Client struct {
	HTTP *http.Client

	// Email is sent as the mailto parameter for polite pool access.
	Email string

	// UserAgent is sent with every request.
	UserAgent string

	// Retry bounds attempts on rate-limited or failing requests.
	Retry httputil.Policy
}

// TopWorks returns the author's works sorted by citation count, most cited
// first, at most max entries.
func (c *Client) TopWorks(ctx context.Context, authorID string, max int) ([]types.Work, error) {
	if max <= 0 {
		max = 4
	}

	params := url.Values{
		"filter":   {"author.id:" + authorID},
		"sort":     {"cited_by_count:desc"},
		"per_page": {fmt.Sprintf("%d", max)},
	}

	var resp openAlexListResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("listing works for %s: %w", authorID, err)
	}

	works := make([]types.Work, 0, len(resp.Results))
	for _, w := range resp.Results {
		work := types.Work{
			ID:           trimOpenAlexID(w.ID),
			Title:        w.Title,
			CitedByCount: w.CitedByCount,
		}
		if w.PublicationDate != "" {
			if t, err := time.Parse("2006-01-02", w.PublicationDate); err == nil {
				work.Date = t
			}
		}
		works = append(works, work)
	}
	return works, nil
}

// CitingPapers pages through every work citing workID and returns each with
// its citing authors and their raw affiliation strings.
func (c *Client) CitingPapers(ctx context.Context, workID string) ([]types.CitingPaper, error) {
	var papers []types.CitingPaper
	cursor := "*"

	for cursor != "" {
		params := url.Values{
			"filter":   {"cites:" + workID},
			"per_page": {fmt.Sprintf("%d", citingPageSize)},
			"cursor":   {cursor},
		}

		var resp openAlexListResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return papers, fmt.Errorf("listing citations of %s: %w", workID, err)
		}

		for _, w := range resp.Results {
			papers = append(papers, citingPaperFromWork(w, workID))
		}

		cursor = resp.Meta.NextCursor
		if len(resp.Results) == 0 {
			break
		}
	}
	return papers, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}
	reqURL := openAlexWorksBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.Do(ctx, c.HTTP, req, c.Retry)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

// citingPaperFromWork extracts authors and affiliation strings from a
// work's authorships. OpenAlex carries the verbatim affiliation text in
// raw_affiliation_strings; institution display names are the fallback.
// Affiliations are deduplicated within the paper, preserving order.
func citingPaperFromWork(w openAlexWork, citesID string) types.CitingPaper {
	p := types.CitingPaper{
		ID:      trimOpenAlexID(w.ID),
		CitesID: citesID,
		Title:   w.Title,
	}

	seen := make(map[string]struct{})
	addAffiliation := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		p.Affiliations = append(p.Affiliations, s)
	}

	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			p.Authors = append(p.Authors, a.Author.DisplayName)
		}
		if len(a.RawAffiliationStrings) > 0 {
			for _, s := range a.RawAffiliationStrings {
				addAffiliation(s)
			}
			continue
		}
		for _, inst := range a.Institutions {
			addAffiliation(inst.DisplayName)
		}
	}
	return p
}

// trimOpenAlexID strips the https://openalex.org/ prefix, leaving the bare
// ID (e.g. "W2741809807").
func trimOpenAlexID(id string) string {
	const prefix = "https://openalex.org/"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		return id[len(prefix):]
	}
	return id
}

// OpenAlex API JSON structures.
type openAlexListResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	PublicationDate string               `json:"publication_date"`
	CitedByCount    int                  `json:"cited_by_count"`
	Authorships     []openAlexAuthorship `json:"authorships"`
}

type openAlexAuthorship struct {
	Author                openAlexAuthor        `json:"author"`
	Institutions          []openAlexInstitution `json:"institutions"`
	RawAffiliationStrings []string              `json:"raw_affiliation_strings"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
}
