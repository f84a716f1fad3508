package search

import (
	"testing"

	"go-photo-context/pkg/models"
)

func namedCandidates(names ...string) []models.StoredRecord {
	out := make([]models.StoredRecord, len(names))
	for i, n := range names {
		out[i] = models.StoredRecord{Record: models.AnalysisRecord{DisplayName: n}}
	}
	return out
}

func TestSuggestNames(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		candidates []models.StoredRecord
		expected   []string
	}{
		{
			name:       "Typo within threshold",
			query:      "sunst",
			candidates: namedCandidates("sunset.jpg", "mountain.png"),
			expected:   []string{"sunset.jpg"},
		},
		{
			name:       "Extension ignored in comparison",
			query:      "sunset",
			candidates: namedCandidates("sunset.jpg"),
			expected:   []string{"sunset.jpg"},
		},
		{
			name:       "Case insensitive",
			query:      "SUNSET",
			candidates: namedCandidates("Sunset.jpg"),
			expected:   []string{"Sunset.jpg"},
		},
		{
			name:       "Distant names excluded",
			query:      "sunset",
			candidates: namedCandidates("mountain.png", "harbor.jpg"),
			expected:   nil,
		},
		{
			name:       "Empty query",
			query:      "   ",
			candidates: namedCandidates("sunset.jpg"),
			expected:   nil,
		},
		{
			name:       "Duplicates collapsed",
			query:      "sunst",
			candidates: namedCandidates("sunset.jpg", "sunset.jpg", "sunset.jpg"),
			expected:   []string{"sunset.jpg"},
		},
		{
			name:       "Nameless records skipped",
			query:      "sunst",
			candidates: namedCandidates("", "sunset.jpg"),
			expected:   []string{"sunset.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestNames(tt.query, tt.candidates)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d suggestions, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected suggestion %q at %d, got %q", tt.expected[i], i, got[i])
				}
			}
		})
	}
}

func TestSuggestNames_CapAndOrder(t *testing.T) {
	// All four are one edit away except the exact match, which sorts first.
	candidates := namedCandidates("sunset.jpg", "sunsets.jpg", "sunnet.jpg", "sunse.jpg")

	got := SuggestNames("sunset", candidates)
	if len(got) != maxSuggestions {
		t.Fatalf("Expected cap at %d suggestions, got %d: %v", maxSuggestions, len(got), got)
	}
	if got[0] != "sunset.jpg" {
		t.Errorf("Expected exact match first, got %q", got[0])
	}
}
