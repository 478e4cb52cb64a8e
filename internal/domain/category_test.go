package domain

import "testing"

func TestParseCategoryExactMatch(t *testing.T) {
	t.Parallel()

	for _, cat := range Categories() {
		if got := ParseCategory(string(cat)); got != cat {
			t.Fatalf("ParseCategory(%q) = %q", cat, got)
		}
	}
}

func TestParseCategoryFallback(t *testing.T) {
	t.Parallel()

	// Matching is exact: casing and spelling variants coerce to fallback.
	cases := []string{
		"",
		"Sports",
		"economy",
		"Polity and Governance",
		"Polity & Governance Extra",
	}

	for _, raw := range cases {
		if got := ParseCategory(raw); got != FallbackCategory {
			t.Fatalf("ParseCategory(%q) = %q, want fallback", raw, got)
		}
	}
}
