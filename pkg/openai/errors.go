package openai

import "errors"

// Sentinel errors for external model-service failures.
var (
	ErrEmptyInput = errors.New("empty input text")
	ErrEmbedding  = errors.New("embedding request failed")
	ErrGeneration = errors.New("completion request failed")
)
