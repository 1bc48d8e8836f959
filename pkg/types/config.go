package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citemap/0.1"). Nominatim rejects requests without one.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the citation fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// AuthorID is the OpenAlex author ID whose citations are tracked
	// (e.g. "A5023888391").
	AuthorID string `json:"author_id" yaml:"author_id"`

	// MaxWorks is the number of top-cited works to fetch citations for
	// (default 4).
	MaxWorks int `json:"max_works" yaml:"max_works"`

	// Email is sent as the mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// RequestDelay is the delay between consecutive API calls (default 200ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// DataDir is the base directory for fetched data (contains citations.db).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ResolveConfig holds settings for the affiliation resolution stage.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// CachePath is the location of the persistent resolution cache file.
	CachePath string `json:"cache_path" yaml:"cache_path"`

	// AliasPath is an optional YAML file of extra institution aliases,
	// merged over the built-in table.
	AliasPath string `json:"alias_path,omitempty" yaml:"alias_path,omitempty"`

	// MaxAttempts is the number of geocoding attempts per query (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryBaseDelay is the base duration for exponential backoff between
	// geocoding attempts (default 1s).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	// RequestDelay is the pause between geocoding calls for distinct keys,
	// keeping within Nominatim's usage policy (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// MapConfig holds settings for the aggregation/output stage.
type MapConfig struct {
	// PointsPath is the output path for the aggregated points GeoJSON.
	PointsPath string `json:"points_path" yaml:"points_path"`

	// UnresolvedPath is the output path for the unresolved-affiliations list.
	UnresolvedPath string `json:"unresolved_path" yaml:"unresolved_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Map     MapConfig     `json:"map" yaml:"map"`
}
