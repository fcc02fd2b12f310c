// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns PICO fields into a boolean search-engine query string.
package query

import "strings"

// Builder joins PICO components into a conjunctive query. Parenthesize
// wraps each component for engines with a formal boolean grammar (PubMed);
// leave it false for lenient free-text engines.
type Builder struct {
	Parenthesize bool
}

// Build returns the non-empty components in P, I, C, O order joined by
// " AND ". Components are trimmed; empty ones are dropped. All-empty
// input yields "".
func (b Builder) Build(population, intervention, comparison, outcome string) string {
	var parts []string
	for _, c := range []string{population, intervention, comparison, outcome} {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if b.Parenthesize {
			c = "(" + c + ")"
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, " AND ")
}

// Build joins bare components.
func Build(population, intervention, comparison, outcome string) string {
	return Builder{}.Build(population, intervention, comparison, outcome)
}

// BuildBoolean joins parenthesized components.
func BuildBoolean(population, intervention, comparison, outcome string) string {
	return Builder{Parenthesize: true}.Build(population, intervention, comparison, outcome)
}
