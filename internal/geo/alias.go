// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// builtinAliases maps hand-curated institution-name variants to their
// canonical "City, Country" location. Keys are normalized at table
// construction, so entries here can be written in natural form.
var builtinAliases = map[string]string{
	"UCLA":                                        "Los Angeles, California, USA",
	"Loyola University Chicago":                   "Chicago, Illinois, USA",
	"Washington State University":                 "Pullman, Washington, USA",
	"Harbin Institute of Technology":              "Harbin, China",
	"University of Wisconsin-Madison":             "Madison, Wisconsin, USA",
	"Tsinghua University":                         "Beijing, China",
	"Stanford University":                         "Stanford, California, USA",
	"New Mexico State University":                 "Las Cruces, New Mexico, USA",
	"WorldServe Education":                        "Bangalore, India",
	"COMSATS University":                          "Islamabad, Pakistan",
	"Macquarie University":                        "Sydney, Australia",
	"Lancaster University":                        "Lancaster, UK",
	"University of Houston":                       "Houston, Texas, USA",
	"University of Science and Technology of China": "Hefei, China",
	"Beijing Jiaotong University":                 "Beijing, China",
	"National Institute of Technology Hamirpur":   "Hamirpur, India",
	"VNR VJIET":                                   "Hyderabad, India",
	"SNS College of Technology":                   "Coimbatore, India",
	"Intel Corporation":                           "Santa Clara, California, USA",
	"Georgia Tech":                                "Atlanta, Georgia, USA",
	"Georgia Institute of Technology":             "Atlanta, Georgia, USA",
	"GA Tech":                                     "Atlanta, Georgia, USA",
}

// AliasTable maps normalized institution-name keys to canonical locations.
// It is built once at startup and never mutated afterwards; construct it
// explicitly and pass it into the Resolver.
type AliasTable struct {
	entries map[string]string
}

// NewAliasTable builds a table from raw name → location pairs. Names are
// normalized into lookup keys; later duplicates overwrite earlier ones.
func NewAliasTable(pairs map[string]string) *AliasTable {
	t := &AliasTable{entries: make(map[string]string, len(pairs))}
	for name, loc := range pairs {
		t.entries[Normalize(name)] = loc
	}
	return t
}

// DefaultAliasTable returns the built-in institution table.
func DefaultAliasTable() *AliasTable {
	return NewAliasTable(builtinAliases)
}

// LoadAliasTable builds the default table and merges entries from an
// optional YAML file of name: location pairs. An empty path yields the
// defaults alone; a missing or malformed file is an error since a reviewer
// pointing at the wrong file should hear about it.
func LoadAliasTable(path string) (*AliasTable, error) {
	t := DefaultAliasTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file %s: %w", path, err)
	}

	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}

	for name, loc := range extra {
		t.entries[Normalize(name)] = loc
	}
	return t, nil
}

// Lookup returns the canonical location for a normalized key. The match is
// exact: canonicalization rules live in Normalize, not here.
func (t *AliasTable) Lookup(key string) (string, bool) {
	loc, ok := t.entries[key]
	return loc, ok
}

// Len returns the number of alias entries.
func (t *AliasTable) Len() int {
	return len(t.entries)
}
