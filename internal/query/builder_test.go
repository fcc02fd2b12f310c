// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAllSubsets(t *testing.T) {
	values := []string{"adults", "statins", "placebo", "mortality"}

	// Every subset of {P, I, C, O} present or empty.
	for mask := 0; mask < 16; mask++ {
		args := make([]string, 4)
		var want []string
		for i := range values {
			if mask&(1<<i) != 0 {
				args[i] = values[i]
				want = append(want, values[i])
			}
		}

		got := Build(args[0], args[1], args[2], args[3])
		assert.Equal(t, strings.Join(want, " AND "), got, "mask %04b", mask)
	}
}

func TestBuildTrimsAndDropsBlank(t *testing.T) {
	tests := []struct {
		name string
		p, i string
		c, o string
		want string
	}{
		{"all empty", "", "", "", "", ""},
		{"whitespace only", "  ", "\t", "\n", " ", ""},
		{"trims components", "  adults ", "statins", "", "", "adults AND statins"},
		{"keeps PICO order", "", "I", "", "O", "I AND O"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.p, tt.i, tt.c, tt.o))
		})
	}
}

func TestBuildBoolean(t *testing.T) {
	got := BuildBoolean("Adult diabetic patients", "SGLT2 inhibitors", "", "mortality")
	assert.Equal(t, "(Adult diabetic patients) AND (SGLT2 inhibitors) AND (mortality)", got)

	assert.Equal(t, "", BuildBoolean("", " ", "", ""))
}

func TestBuilderNeverEmitsEmptyComponent(t *testing.T) {
	got := Builder{Parenthesize: true}.Build("a", "", " ", "d")
	assert.NotContains(t, got, "()")
	assert.NotContains(t, got, "AND  AND")
	assert.Equal(t, "(a) AND (d)", got)
}
