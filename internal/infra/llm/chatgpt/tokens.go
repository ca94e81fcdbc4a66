package chatgpt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenEstimator counts tokens with the model's BPE encoding. Encodings are
// loaded lazily; when none can be loaded it falls back to a word count.
type TokenEstimator struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

// NewTokenEstimator returns an estimator for model.
func NewTokenEstimator(model string) *TokenEstimator {
	return &TokenEstimator{model: model}
}

// Count returns the estimated number of tokens in text.
func (e *TokenEstimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if e == nil {
		return len(strings.Fields(text))
	}
	e.once.Do(e.load)
	if e.enc == nil {
		return len(strings.Fields(text))
	}
	return len(e.enc.Encode(text, nil, nil))
}

func (e *TokenEstimator) load() {
	if enc, err := tiktoken.EncodingForModel(e.model); err == nil {
		e.enc = enc
		return
	}
	if enc, err := tiktoken.GetEncoding(fallbackEncoding); err == nil {
		e.enc = enc
	}
}
