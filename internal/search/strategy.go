package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "go-photo-context/internal/errors"
	"go-photo-context/internal/logger"
	"go-photo-context/internal/vision"
	"go-photo-context/pkg/models"
)

// RankStrategy defines the interface for different result ranking strategies
type RankStrategy interface {
	Rank(ctx context.Context, query string, candidates []models.StoredRecord, maxResults int) ([]models.SearchResult, error)
	StrategyName() string
}

// KeywordRankStrategy ranks candidates with the deterministic relevance score
type KeywordRankStrategy struct{}

// NewKeywordRankStrategy creates a new keyword ranking strategy
func NewKeywordRankStrategy() *KeywordRankStrategy {
	return &KeywordRankStrategy{}
}

// Rank scores every candidate, keeps positive scores, sorts descending by
// score (stable on ties, preserving store order) and truncates to maxResults.
func (s *KeywordRankStrategy) Rank(_ context.Context, query string, candidates []models.StoredRecord, maxResults int) ([]models.SearchResult, error) {
	results := make([]models.SearchResult, 0, len(candidates))
	for i := range candidates {
		score := Score(&candidates[i].Record, query)
		if score > 0 {
			results = append(results, models.SearchResult{
				Record:         candidates[i].Record,
				BatchID:        candidates[i].BatchID,
				SourceFile:     candidates[i].SourceFile,
				RelevanceScore: score,
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// StrategyName returns the strategy name
func (s *KeywordRankStrategy) StrategyName() string {
	return "keyword"
}

// aiRankCandidateLimit caps how many candidates are enumerated in the
// ranking prompt.
const aiRankCandidateLimit = 50

// aiRankPreviewChars caps the context preview length per candidate.
const aiRankPreviewChars = 300

// AIRankStrategy asks the vision model to rank the candidate set. Any parse
// failure or malformed index falls back to the keyword strategy; a ranking
// problem is never surfaced to the caller.
type AIRankStrategy struct {
	analyzer vision.ImageAnalyzer
	fallback RankStrategy
}

// NewAIRankStrategy creates a model-backed ranking strategy with a fallback
func NewAIRankStrategy(analyzer vision.ImageAnalyzer, fallback RankStrategy) *AIRankStrategy {
	return &AIRankStrategy{analyzer: analyzer, fallback: fallback}
}

// StrategyName returns the strategy name
func (s *AIRankStrategy) StrategyName() string {
	return "ai_rank"
}

// rankedItem is one entry of the structured ranking the model returns.
type rankedItem struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
}

// Rank builds a prompt enumerating up to the first 50 candidates with
// truncated context previews, asks the model for a structured ranking and
// maps it back onto the candidates.
func (s *AIRankStrategy) Rank(ctx context.Context, query string, candidates []models.StoredRecord, maxResults int) ([]models.SearchResult, error) {
	if len(candidates) == 0 {
		return []models.SearchResult{}, nil
	}

	limit := len(candidates)
	if limit > aiRankCandidateLimit {
		limit = aiRankCandidateLimit
	}

	prompt := buildRankPrompt(query, candidates[:limit])
	response, err := s.analyzer.Generate(ctx, prompt)
	if err != nil {
		logger.WithError(err).Warn("AI ranking call failed, falling back to keyword scoring")
		return s.fallback.Rank(ctx, query, candidates, maxResults)
	}

	ranked, parseErr := parseRanking(response, limit)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("AI ranking response unusable, falling back to keyword scoring")
		return s.fallback.Rank(ctx, query, candidates, maxResults)
	}

	results := make([]models.SearchResult, 0, len(ranked))
	for _, item := range ranked {
		c := candidates[item.Index]
		results = append(results, models.SearchResult{
			Record:         c.Record,
			BatchID:        c.BatchID,
			SourceFile:     c.SourceFile,
			RelevanceScore: item.RelevanceScore,
			Reasoning:      item.Reasoning,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// buildRankPrompt enumerates the candidates with truncated previews and asks
// for a JSON ranking.
func buildRankPrompt(query string, candidates []models.StoredRecord) string {
	var sb strings.Builder
	sb.WriteString("You are ranking stored image descriptions against a search query.\n")
	sb.WriteString(fmt.Sprintf("Query: %q\n\nCandidates:\n", query))
	for i := range candidates {
		preview := candidates[i].Record.Context
		if len(preview) > aiRankPreviewChars {
			preview = preview[:aiRankPreviewChars] + "..."
		}
		sb.WriteString(fmt.Sprintf("[%d] name=%q context=%q\n", i, candidates[i].Record.DisplayName, preview))
	}
	sb.WriteString("\nReturn ONLY a JSON array of objects with fields ")
	sb.WriteString(`"index" (candidate number), "relevance_score" (0.0-1.0) and "reasoning" (short string), `)
	sb.WriteString("listing only candidates relevant to the query, most relevant first.")
	return sb.String()
}

// parseRanking decodes the model's ranking, tolerating a markdown code fence
// around the JSON. Out-of-range indices make the whole ranking unusable.
func parseRanking(response string, candidateCount int) ([]rankedItem, error) {
	text := strings.TrimSpace(response)
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			text = text[start : end+1]
		}
	}

	var ranked []rankedItem
	if err := json.Unmarshal([]byte(text), &ranked); err != nil {
		return nil, apperrors.NewRankParseError("ranking response is not a JSON array", err)
	}
	for _, item := range ranked {
		if item.Index < 0 || item.Index >= candidateCount {
			return nil, apperrors.NewRankParseError(
				fmt.Sprintf("ranking index %d out of range (have %d candidates)", item.Index, candidateCount), nil)
		}
	}
	return ranked, nil
}
