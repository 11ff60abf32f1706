// Copyright (c) 2026 Encre. All rights reserved.
// Author: Encre maintainers

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs are the external key of series, books and chapters (e.g., "the-long-night").
// This package handles normalization, accent removal, and character sanitization.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// transliterations covers letters whose NFD form would lose information
	// (ş → s instead of sh) or has no decomposition at all (ı, ə).
	transliterations = strings.NewReplacer(
		"ü", "u",
		"ö", "o",
		"ş", "sh",
		"ç", "ch",
		"ğ", "g",
		"ı", "i",
		"ə", "e",
	)
	// disallowed matches anything that is not a lowercase letter, digit, whitespace or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]+`)
	// whitespace matches runs of whitespace.
	whitespace = regexp.MustCompile(`\s+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Lowercases and transliterates Turkish/Azerbaijani letters (ş → sh).
// 2. Normalizes to NFD and removes combining marks (é → e).
// 3. Drops punctuation and symbols ("don't" → "dont").
// 4. Replaces whitespace with hyphens, collapses and trims them.
//
// The result matches ^[a-z0-9-]*$ and may be empty.
func From(s string) string {
	result := transliterations.Replace(strings.ToLower(strings.TrimSpace(s)))

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ = transform.String(t, result)

	result = disallowed.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// WithSuffix appends "-n" to base, used when searching for a free slug.
func WithSuffix(base string, n int) string {
	return base + "-" + strconv.Itoa(n)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
