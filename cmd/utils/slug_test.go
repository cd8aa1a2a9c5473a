package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spring Regatta 2026", "spring-regatta-2026"},
		{"  Évènement d'été  ", "evenement-d-ete"},
		{"Wednesday!!!Night---Race", "wednesday-night-race"},
		{"ÅRHUS åben", "arhus-aben"},
		{"---", "event"},
		{"", "event"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyLength(t *testing.T) {
	got := Slugify(strings.Repeat("regatta ", 40))
	if len(got) > 100 {
		t.Fatalf("slug length = %d, want <= 100", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Fatalf("slug %q has a dangling hyphen", got)
	}
}
