// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "MIT", "mit"},
		{"collapses whitespace", "mit,   cambridge", "mit, cambridge"},
		{"keeps commas", "MIT, Cambridge, USA", "mit, cambridge, usa"},
		{"strips periods", "Univ. of Houston", "university of houston"},
		{"expands dept", "Dept. of Physics, MIT", "department of physics, mit"},
		{"expands inst", "Harbin Inst of Technology", "harbin institute of technology"},
		{"strips accents", "Universität Zürich", "universitat zurich"},
		{"hyphen is a boundary", "University of Wisconsin-Madison", "university of wisconsin madison"},
		{"ampersand", "Texas A&M", "texas a and m"},
		{"parens dropped", "Intel Corp. (Santa Clara)", "intel corporation santa clara"},
		{"trailing comma dropped", "Stanford University,", "stanford university"},
		{"only punctuation", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := "Dépt. of Économie, Université de Montréal"
	first := Normalize(raw)
	for i := 0; i < 10; i++ {
		if got := Normalize(raw); got != first {
			t.Fatalf("Normalize not deterministic: %q then %q", first, got)
		}
	}
}

func TestNormalize_EquivalentInputsShareKey(t *testing.T) {
	pairs := [][2]string{
		{"MIT, Cambridge", "mit,  cambridge"},
		{"Stanford University", "STANFORD UNIVERSITY."},
		{"Univ of Houston", "University of Houston"},
		{"São Paulo", "Sao Paulo"},
	}
	for _, p := range pairs {
		a, b := Normalize(p[0]), Normalize(p[1])
		if a != b {
			t.Errorf("Normalize(%q) = %q but Normalize(%q) = %q", p[0], a, p[1], b)
		}
	}
}
