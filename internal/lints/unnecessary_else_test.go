package lints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/glintlabs/glint/internal/types"
)

func TestUnnecessaryElse(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{
			name: "else after returning if",
			code: `package main

func grade(x int) string {
	if x > 10 {
		return "big"
	} else {
		return "small"
	}
}`,
			expected: 1,
		},
		{
			name: "already flattened",
			code: `package main

func grade(x int) string {
	if x > 10 {
		return "big"
	}
	return "small"
}`,
			expected: 0,
		},
		{
			name: "if body does not return",
			code: `package main

func grade(x int) int {
	y := 0
	if x > 10 {
		y = 1
	} else {
		y = 2
	}
	return y
}`,
			expected: 0,
		},
		{
			name: "else-if chain is left alone",
			code: `package main

func grade(x int) string {
	if x > 10 {
		return "big"
	} else if x > 5 {
		return "mid"
	}
	return "small"
}`,
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := findings(analyze(t, tc.code), "unnecessary-else")
			assert.Len(t, got, tc.expected)
		})
	}
}

func TestUnnecessaryElseSuggestionIsReviewed(t *testing.T) {
	code := `package main

func grade(x int) string {
	if x > 10 {
		return "big"
	} else {
		return "small"
	}
}`
	got := findings(analyze(t, code), "unnecessary-else")
	require.Len(t, got, 1)
	assert.Equal(t, tt.LevelWarn, got[0].Severity)
	require.Len(t, got[0].Suggestions, 1)
	assert.Equal(t, tt.MaybeIncorrect, got[0].Suggestions[0].Applicability,
		"moving code across a brace needs human review")
}
