package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCardManifestAccepts(t *testing.T) {
	data := []byte("cards:\n  - id: card-42\n    title: Dragon Lore\n    scope_id: proj-1\n  - id: card-7\n    title: The Mountain\n")
	if err := ValidateCardManifest(data); err != nil {
		t.Fatalf("expected manifest to validate, got %v", err)
	}
}

func TestValidateCardManifestReportsIssues(t *testing.T) {
	cases := map[string]string{
		"missing title": "cards:\n  - id: card-42\n",
		"unknown field": "cards:\n  - id: card-42\n    title: Dragon Lore\n    colour: red\n",
		"not a list":    "cards: card-42\n",
		"empty":         "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateCardManifest([]byte(data))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.Is(err, ErrManifestInvalid) {
				t.Fatalf("expected ErrManifestInvalid, got %v", err)
			}
			if len(Issues(err)) == 0 {
				t.Fatalf("expected issues for %q", data)
			}
		})
	}
}

func TestManifestErrorFormatsLocations(t *testing.T) {
	err := &ManifestError{Issues: []Issue{{Location: "/cards/0", Message: "missing title"}, {Message: "bad"}}}
	got := err.Error()
	if !strings.Contains(got, "#/cards/0: missing title") || !strings.Contains(got, "#: bad") {
		t.Fatalf("unexpected message %q", got)
	}
}
