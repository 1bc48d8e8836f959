// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Work holds metadata for one of the tracked author's own publications.
type Work struct {
	// ID is the OpenAlex work ID (e.g. "W2741809807").
	ID string `json:"id" yaml:"id"`

	// Title is the work title.
	Title string `json:"title" yaml:"title"`

	// Date is the publication date.
	Date time.Time `json:"date" yaml:"date"`

	// CitedByCount is the citation count reported by the source.
	CitedByCount int `json:"cited_by_count" yaml:"cited_by_count"`
}

// CitingPaper is one paper that cites a tracked work, together with the
// affiliation strings of its authors.
type CitingPaper struct {
	// ID is the OpenAlex work ID of the citing paper.
	ID string `json:"id" yaml:"id"`

	// CitesID is the ID of the tracked work this paper cites.
	CitesID string `json:"cites_id" yaml:"cites_id"`

	// Title is the citing paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the citing authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Affiliations lists the raw institution strings attached to the
	// citing authors, deduplicated within the paper.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`
}
