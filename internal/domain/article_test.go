package domain

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Health Research", "health-research"},
		{"punctuation", "Loneliness & Social Isolation!", "loneliness-social-isolation"},
		{"already slug", "mental-health", "mental-health"},
		{"mixed case", "Gen Z", "gen-z"},
		{"leading trailing junk", "  --Cigna--  ", "cigna"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugifyTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("category ", 30)
	slug := Slugify(long)

	if len(slug) > SlugMaxLength {
		t.Fatalf("slug length %d exceeds %d", len(slug), SlugMaxLength)
	}
	if strings.HasSuffix(slug, "-") {
		t.Fatalf("truncated slug ends with hyphen: %q", slug)
	}
}
