package search

import (
	"path"
	"sort"
	"strings"

	"go-photo-context/pkg/models"

	"github.com/arbovm/levenshtein"
)

// maxSuggestions caps how many near-miss names are offered on a zero-hit search.
const maxSuggestions = 3

// SuggestNames offers display names close to the query when a search finds
// nothing, so a typo like "sunst" still leads the caller to "sunset.jpg".
// Names are compared without their extension; only names within an edit
// distance proportional to the query length qualify.
func SuggestNames(query string, candidates []models.StoredRecord) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type scored struct {
		name string
		dist int
	}

	seen := make(map[string]struct{})
	var matches []scored
	for i := range candidates {
		name := candidates[i].Record.DisplayName
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		base := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
		dist := levenshtein.Distance(query, base)
		threshold := len(query) / 3
		if threshold < 2 {
			threshold = 2
		}
		if dist <= threshold {
			matches = append(matches, scored{name: name, dist: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
