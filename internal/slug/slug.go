// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-safe identifiers from names and titles.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// space covers ASCII whitespace plus the Unicode separators and BOM, so a
// non-breaking space separates words like a plain one.
const space = `\s\p{Z}\x{FEFF}`

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, whitespace or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9` + space + `-]`)
	whitespaceRuns  = regexp.MustCompile(`[` + space + `]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	valid           = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// maxAttempts bounds the numeric suffixes tried by Unique.
const maxAttempts = 100

// Generate creates a URL-friendly slug from the given string.
// Example: "Tech & Science!" → "tech-science"
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is already in canonical slug form.
func Valid(s string) bool {
	return valid.MatchString(s)
}

// Unique returns base, or base with the first free numeric suffix
// ("base-2", "base-3", ...) according to taken.
func Unique(ctx context.Context, base string, taken func(ctx context.Context, candidate string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; i < maxAttempts+2; i++ {
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}
