// Package tokens provides token estimation for assembled context text.
// Accurate counts come from tiktoken where the model's encoding is known;
// everything else falls back to a character heuristic so estimation never
// fails a request.
package tokens

import "strings"

// Estimator reports how many tokens a piece of text costs for a model.
type Estimator interface {
	// EstimateTokens returns the token count for text under model's
	// tokenization. The second return reports whether the count is exact
	// or a heuristic estimate.
	EstimateTokens(model, text string) (count int, estimated bool)
}

// heuristicCharsPerToken is the average character-to-token ratio used when
// no real tokenizer is available. Four is a reasonable default for most
// models.
const heuristicCharsPerToken = 4

// HeuristicEstimator estimates tokens from character length alone. It is
// the fallback of last resort and supports every model.
type HeuristicEstimator struct{}

// NewHeuristicEstimator creates a character-ratio estimator.
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{}
}

// EstimateTokens divides the character count by the heuristic ratio.
func (e *HeuristicEstimator) EstimateTokens(model, text string) (int, bool) {
	return len(text) / heuristicCharsPerToken, true
}

// ModelMatcher matches model names against prefix and exact patterns.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a matcher over the given patterns.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{prefixes: prefixes, exact: exact}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
