// Package llm isolates the generative model behind a one-call contract so
// backend failures stay contained to a single uniform error.
package llm

import "context"

// Backend executes one generation request against a language model and
// returns the raw response text. Implementations do not retry or interpret
// the output.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendError wraps any failure raised by a model backend, carrying the
// original message without interpreting it.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return "llm backend: " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
