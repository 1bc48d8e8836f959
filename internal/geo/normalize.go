// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geo resolves raw affiliation strings to geographic coordinates
// through a layered lookup: alias table, persistent cache, then an
// external geocoder.
package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining marks so "Universität" and "Universitat"
// normalize to the same key.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// abbreviations maps common affiliation shorthand (already lowercased,
// period stripped) to its expanded form.
var abbreviations = map[string]string{
	"univ":   "university",
	"inst":   "institute",
	"dept":   "department",
	"lab":    "laboratory",
	"natl":   "national",
	"intl":   "international",
	"coll":   "college",
	"ctr":    "center",
	"centre": "center",
	"tech":   "technology",
	"corp":   "corporation",
	"engg":   "engineering",
}

// Normalize derives the lookup key for a raw affiliation string. It strips
// accents, lowercases, removes punctuation except commas (kept as field
// separators), expands known abbreviations, and collapses whitespace.
// It is total and deterministic: every input, including the empty string,
// yields a key, and equal inputs always yield equal keys.
func Normalize(raw string) string {
	s, _, err := transform.String(stripAccents, raw)
	if err != nil {
		s = raw
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ',':
			b.WriteRune(',')
		case r == '&':
			b.WriteString(" and ")
		default:
			// Everything else (periods, dashes, slashes, parens) becomes
			// a word boundary.
			b.WriteByte(' ')
		}
	}

	// Normalize comma spacing and expand abbreviations field by field.
	fields := strings.Split(b.String(), ",")
	out := fields[:0]
	for _, f := range fields {
		words := strings.Fields(f)
		for i, w := range words {
			if exp, ok := abbreviations[w]; ok {
				words[i] = exp
			}
		}
		if len(words) > 0 {
			out = append(out, strings.Join(words, " "))
		}
	}
	return strings.Join(out, ", ")
}
