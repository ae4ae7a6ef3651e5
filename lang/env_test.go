package lang

import (
	"errors"
	"testing"
)

// TestRender verifies pattern substitution against an environment.
func TestRender(t *testing.T) {
	env := Env{
		"item":        "chr21",
		"item:sample": "s1",
		"count":       int64(3),
		"ratio":       2.0,
	}

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{name: "no segments", pattern: "plain text", want: "plain text"},
		{name: "empty pattern", pattern: "", want: ""},
		{name: "single identifier", pattern: "${item}", want: "chr21"},
		{name: "qualified identifier", pattern: "${item:sample}", want: "s1"},
		{name: "surrounded", pattern: "id__${item}__x", want: "id__chr21__x"},
		{name: "adjacent segments", pattern: "${item}${count}", want: "chr213"},
		{name: "whole float normalized", pattern: "${ratio}", want: "2"},
		{name: "expression", pattern: "${int(count) * 2}", want: "6"},
		{name: "method", pattern: "${item.upper()}", want: "CHR21"},
		{name: "length", pattern: "${len(item)}", want: "5"},
		{name: "padded whitespace", pattern: "${ item }", want: "chr21"},
		{name: "dollar without brace", pattern: "cost $5", want: "cost $5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.pattern, env)
			if err != nil {
				t.Fatalf("Render(%q) returned error: %v", tt.pattern, err)
			}

			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

// TestRender_Errors verifies failure modes of pattern substitution.
func TestRender_Errors(t *testing.T) {
	env := Env{"item": "abc"}

	tests := []struct {
		name    string
		pattern string
		want    error
	}{
		{name: "unclosed segment", pattern: "id__${item", want: ErrUnclosedExpr},
		{name: "unclosed nested", pattern: "${item.ljust(4, '{')", want: ErrUnclosedExpr},
		{name: "undefined key", pattern: "${missing}", want: ErrUndefinedKey},
		{name: "undefined in expression", pattern: "${missing + 1}", want: ErrUndefinedName},
		{name: "disallowed call", pattern: "${open(item)}", want: ErrDisallowed},
		{name: "syntax error", pattern: "${1 +}", want: ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.pattern, env)
			if err == nil {
				t.Fatalf("Render(%q) succeeded, want error", tt.pattern)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("Render(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}
		})
	}
}

// TestClosestMatch verifies fuzzy suggestion selection.
func TestClosestMatch(t *testing.T) {
	candidates := []string{"genome_dir", "sample_count", "output_root"}

	if got := ClosestMatch("genome_di", candidates); got != "genome_dir" {
		t.Errorf("ClosestMatch = %q, want %q", got, "genome_dir")
	}

	if got := ClosestMatch("zzz", nil); got != "" {
		t.Errorf("ClosestMatch on empty candidates = %q, want empty", got)
	}
}
