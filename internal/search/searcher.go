package search

import (
	"context"
	"strings"

	"go-photo-context/internal/logger"
	"go-photo-context/internal/vision"
	"go-photo-context/pkg/models"

	"github.com/codycollier/wer"
	"github.com/sirupsen/logrus"
)

// HistoryLister is the slice of the history store the searcher needs.
type HistoryLister interface {
	ListAll() ([]models.StoredRecord, error)
}

// Options controls a single search invocation.
type Options struct {
	MaxResults int
	UseAIRank  bool
	// Explain attaches a token error rate diagnostic to each result. It never
	// changes scores or ordering.
	Explain bool
}

// Result is the outcome of one search: ranked hits, the strategy that
// produced them and, on a zero-hit search, near-miss name suggestions.
type Result struct {
	Query       string                `json:"query"`
	Strategy    string                `json:"strategy"`
	Results     []models.SearchResult `json:"results"`
	TotalFound  int                   `json:"total_found"`
	Suggestions []string              `json:"suggestions,omitempty"`
}

// Searcher ranks the accumulated history against free-text queries.
type Searcher struct {
	history HistoryLister
	keyword *KeywordRankStrategy
	ai      *AIRankStrategy
}

// NewSearcher creates a searcher over the given history. The analyzer is only
// used for the AI ranking path and may be nil to disable it.
func NewSearcher(history HistoryLister, analyzer vision.ImageAnalyzer) *Searcher {
	keyword := NewKeywordRankStrategy()
	s := &Searcher{
		history: history,
		keyword: keyword,
	}
	if analyzer != nil {
		s.ai = NewAIRankStrategy(analyzer, keyword)
	}
	return s
}

// Search ranks all stored records against the query. The AI ranking path is
// used when requested and available; it internally falls back to keyword
// scoring on any ranking problem.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) (*Result, error) {
	candidates, err := s.history.ListAll()
	if err != nil {
		return nil, err
	}

	strategy := RankStrategy(s.keyword)
	if opts.UseAIRank && s.ai != nil {
		strategy = s.ai
	}

	results, err := strategy.Rank(ctx, query, candidates, opts.MaxResults)
	if err != nil {
		return nil, err
	}

	if opts.Explain {
		attachTokenErrorRates(query, results)
	}

	out := &Result{
		Query:      query,
		Strategy:   strategy.StrategyName(),
		Results:    results,
		TotalFound: len(results),
	}
	if len(results) == 0 {
		out.Suggestions = SuggestNames(query, candidates)
	}

	logger.WithFields(logrus.Fields{
		"query":      query,
		"strategy":   out.Strategy,
		"candidates": len(candidates),
		"found":      out.TotalFound,
	}).Info("Search completed")
	return out, nil
}

// attachTokenErrorRates computes, per result, the word error rate between the
// query and the closest same-length window of the record context. Purely a
// diagnostic for callers inspecting why a result ranked where it did.
func attachTokenErrorRates(query string, results []models.SearchResult) {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return
	}
	for i := range results {
		contextWords := strings.Fields(strings.ToLower(results[i].Record.Context))
		if rate, ok := bestWindowErrorRate(queryWords, contextWords); ok {
			results[i].TokenErrorRate = &rate
		}
	}
}

// bestWindowErrorRate slides a query-sized window over the context tokens and
// returns the lowest word error rate found.
func bestWindowErrorRate(queryWords, contextWords []string) (float64, bool) {
	if len(contextWords) < len(queryWords) {
		return 0, false
	}
	best := -1.0
	for i := 0; i+len(queryWords) <= len(contextWords); i++ {
		rate, _ := wer.WER(queryWords, contextWords[i:i+len(queryWords)])
		if best < 0 || rate < best {
			best = rate
		}
		if best == 0 {
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
