package search

import (
	"strings"

	"go-photo-context/pkg/models"
)

// Score calculates how relevant a stored record is to a free-text query,
// returning a value in [0, 1]. The formula is a fixed weighted blend of word
// overlap, exact phrase presence and display-name matching; results must be
// reproducible across runs, so there is no randomness and no side effects.
func Score(record *models.AnalysisRecord, query string) float64 {
	if record == nil || query == "" {
		return 0.0
	}

	queryWords := strings.Fields(strings.ToLower(query))
	contextWords := strings.Fields(strings.ToLower(record.Context))
	if len(queryWords) == 0 {
		return 0.0
	}

	contextSet := make(map[string]struct{}, len(contextWords))
	for _, w := range contextWords {
		contextSet[w] = struct{}{}
	}

	matching := 0
	for _, w := range queryWords {
		if _, ok := contextSet[w]; ok {
			matching++
		}
	}
	wordRelevance := float64(matching) / float64(len(queryWords))

	// Exact contiguous phrase match, only meaningful for multi-word queries.
	phraseRelevance := 0.0
	if len(queryWords) > 1 {
		for i := 0; i+len(queryWords) <= len(contextWords); i++ {
			if wordsEqual(contextWords[i:i+len(queryWords)], queryWords) {
				phraseRelevance = 1.0
				break
			}
		}
	}

	nameRelevance := 0.0
	nameLower := strings.ToLower(record.DisplayName)
	for _, w := range queryWords {
		if strings.Contains(nameLower, w) {
			nameRelevance = 0.5
			break
		}
	}

	score := 0.6*wordRelevance + 0.3*phraseRelevance + 0.1*nameRelevance
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func wordsEqual(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
