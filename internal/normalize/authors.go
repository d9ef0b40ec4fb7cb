// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
)

var (
	// conjunctionPattern matches the "and"/"&" before the last name of a
	// joined author string.
	conjunctionPattern = regexp.MustCompile(`(?i),?\s+(?:and|&)\s+`)

	// initialsPattern matches a given-name part made only of initials:
	// "Z.", "J.-P.", "A. B.".
	initialsPattern = regexp.MustCompile(`^(?:\p{Lu}\.?-?\s*)+$`)
)

var placeholders = map[string]bool{
	"et al":     true,
	"et al.":    true,
	"others":    true,
	"unknown":   true,
	"anonymous": true,
	"n/a":       true,
	"...":       true,
}

var suffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// Authors returns a flat list of trimmed, non-empty author names in
// "Given Family" order. A single-element input is treated as a joined
// author string and split on semicolons, "and", "&" and commas.
func Authors(raw []string) []string {
	parts := raw
	if len(raw) == 1 {
		parts = splitJoined(raw[0])
	}

	var names []string
	for _, p := range parts {
		name := canonicalName(p)
		if name == "" || placeholders[strings.ToLower(name)] {
			continue
		}
		names = append(names, name)
	}
	return names
}

// splitJoined splits a joined author string into individual names. Comma
// lists made of "Family, Initials" pairs are recombined into one name per
// pair.
func splitJoined(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ";") {
		return strings.Split(s, ";")
	}

	s = conjunctionPattern.ReplaceAllString(s, ", ")
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if !familyGivenPairs(parts) {
		return parts
	}
	names := make([]string, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		names = append(names, parts[i+1]+" "+parts[i])
	}
	return names
}

// familyGivenPairs reports whether parts alternate family names and given
// names: "Wu", "Z.", "Pan", "S.". A lone "Family, Given" pair qualifies
// when the family part is a single word.
func familyGivenPairs(parts []string) bool {
	if len(parts) < 2 || len(parts)%2 != 0 {
		return false
	}
	if len(parts) == 2 && !strings.Contains(parts[0], " ") && !suffixes[strings.ToLower(parts[1])] {
		return true
	}
	for i := 1; i < len(parts); i += 2 {
		if !initialsPattern.MatchString(parts[i]) {
			return false
		}
	}
	return true
}

// canonicalName collapses whitespace and flips the "Family, Given" form
// into "Given Family". Names without a comma keep their word order, whatever
// their capitalization.
func canonicalName(s string) string {
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " ,;")
	if s == "" {
		return ""
	}

	if family, given, ok := strings.Cut(s, ","); ok && !strings.Contains(given, ",") {
		family, given = strings.TrimSpace(family), strings.TrimSpace(given)
		switch {
		case given == "":
			return family
		case family == "":
			return given
		case suffixes[strings.ToLower(given)]:
			return s
		default:
			return given + " " + family
		}
	}
	return s
}
