package semantic

import "errors"

// Sentinel errors distinguishing backend failure modes. Callers dispatch
// with errors.Is.
var (
	ErrUnavailable = errors.New("vector store unavailable")
	ErrConfig      = errors.New("collection configuration failed")
	ErrWrite       = errors.New("vector store write failed")
	ErrRead        = errors.New("vector store read failed")
)
