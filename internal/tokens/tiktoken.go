package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// TiktokenEstimator counts tokens with tiktoken for models whose encoding
// is known, and degrades to the character heuristic for everything else.
type TiktokenEstimator struct {
	matcher  *ModelMatcher
	fallback Estimator

	// codecCache caches tokenizer codecs by encoding name
	codecCache map[tokenizer.Encoding]tokenizer.Codec
	cacheMu    sync.RWMutex
}

// NewTiktokenEstimator creates a tiktoken-backed estimator.
func NewTiktokenEstimator() *TiktokenEstimator {
	return &TiktokenEstimator{
		matcher: NewModelMatcher(
			// "o" prefixes cover o1, o3, o4 reasoning models.
			[]string{"gpt-", "o1", "o3", "o4", "text-embedding", "text-davinci"},
			[]string{"davinci", "curie", "babbage", "ada"},
		),
		fallback:   NewHeuristicEstimator(),
		codecCache: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

// EstimateTokens returns an exact tiktoken count when the model's encoding
// resolves, and a heuristic estimate otherwise. It never returns an error;
// token estimation must not fail context assembly.
func (e *TiktokenEstimator) EstimateTokens(model, text string) (int, bool) {
	if !e.matcher.Matches(model) {
		return e.fallback.EstimateTokens(model, text)
	}

	codec, err := e.getCodec(model)
	if err != nil {
		return e.fallback.EstimateTokens(model, text)
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return e.fallback.EstimateTokens(model, text)
	}
	return len(ids), false
}

// getCodec resolves and caches the tokenizer codec for a model.
func (e *TiktokenEstimator) getCodec(model string) (tokenizer.Codec, error) {
	if codec, err := tokenizer.ForModel(tokenizer.Model(strings.ToLower(model))); err == nil {
		return codec, nil
	}

	encoding := modelToEncoding(model)

	e.cacheMu.RLock()
	if cached, ok := e.codecCache[encoding]; ok {
		e.cacheMu.RUnlock()
		return cached, nil
	}
	e.cacheMu.RUnlock()

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}

	e.cacheMu.Lock()
	e.codecCache[encoding] = codec
	e.cacheMu.Unlock()

	return codec, nil
}

// modelToEncoding maps model name prefixes to tiktoken encodings.
//
// Encoding reference:
// - O200kBase: gpt-5, gpt-4.1, gpt-4o, o1, o3, o4 and newer models
// - Cl100kBase: gpt-4, gpt-3.5-turbo, text-embedding-ada-002
// - P50kBase: text-davinci-003, text-davinci-002
// - R50kBase: davinci, curie, babbage, ada (legacy)
func modelToEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"),
		strings.HasPrefix(model, "gpt-3.5"),
		strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(model, "text-davinci"):
		return tokenizer.P50kBase
	case model == "davinci", model == "curie", model == "babbage", model == "ada":
		return tokenizer.R50kBase
	default:
		return tokenizer.O200kBase
	}
}
