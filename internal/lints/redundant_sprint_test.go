package lints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedundantSprint(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{
			name: "Sprint of a string",
			code: `package main

import "fmt"

func f(s string) string {
	return fmt.Sprint(s)
}`,
			expected: 1,
		},
		{
			name: "Sprintf %s of a string",
			code: `package main

import "fmt"

func f(s string) string {
	return fmt.Sprintf("%s", s)
}`,
			expected: 1,
		},
		{
			name: "Sprint of an int does real work",
			code: `package main

import "fmt"

func f(n int) string {
	return fmt.Sprint(n)
}`,
			expected: 0,
		},
		{
			name: "Sprintf with a real format",
			code: `package main

import "fmt"

func f(s string) string {
	return fmt.Sprintf("%q", s)
}`,
			expected: 0,
		},
		{
			name: "Sprint with several operands",
			code: `package main

import "fmt"

func f(a, b string) string {
	return fmt.Sprint(a, b)
}`,
			expected: 0,
		},
		{
			name: "named string type is left alone",
			code: `package main

import "fmt"

type name string

func f(n name) string {
	return fmt.Sprint(n)
}`,
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := findings(analyze(t, tc.code), "redundant-sprint")
			assert.Len(t, got, tc.expected)
		})
	}
}

func TestRedundantSprintFix(t *testing.T) {
	code := `package main

import "fmt"

func f(s string) string {
	return fmt.Sprintf("%s", s)
}`
	got := findings(analyze(t, code), "redundant-sprint")
	require.Len(t, got, 1)
	require.Len(t, got[0].Suggestions, 1)
	require.Len(t, got[0].Suggestions[0].Edits, 1)
	assert.Equal(t, "s", got[0].Suggestions[0].Edits[0].NewText)
}
