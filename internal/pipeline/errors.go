package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExtractionEmpty is the soft failure for a provider call that parsed
// cleanly but produced zero transactions. It advances the fallback machine
// rather than terminating the request.
var ErrExtractionEmpty = errors.New("extraction returned zero transactions")

// ProviderErrorKind classifies why a single model attempt failed.
type ProviderErrorKind string

const (
	// ProviderCallFailed covers network errors, non-2xx responses and timeouts.
	ProviderCallFailed ProviderErrorKind = "call_failed"
	// ProviderResponseInvalid covers non-JSON or schema-mismatched payloads.
	ProviderResponseInvalid ProviderErrorKind = "response_invalid"
)

// ProviderError wraps a single failed model attempt with enough context to
// log and aggregate, without leaking provider internals to the caller.
type ProviderError struct {
	Provider string
	Model    string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %s: %v", e.Provider, e.Model, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AllProvidersFailedError is the terminal orchestrator outcome: every model
// of every provider failed or came back empty. It carries each provider's
// last error so the caller sees both.
type AllProvidersFailedError struct {
	Errs []error
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return "all extraction providers failed: " + strings.Join(parts, "; ")
}
