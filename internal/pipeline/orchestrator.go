package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// attemptOutcome is the result of one provider/model attempt, expressed as a
// value so the fallback order stays auditable.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeEmpty
	outcomeFailure
)

// Orchestrator walks an ordered list of providers, each with an ordered list
// of model variants, until one attempt yields at least one transaction that
// survives post-processing. All calls are sequential: within a provider,
// across providers, and across chunks. A failed model is never retried; the
// only "retry" is moving on.
type Orchestrator struct {
	providers   []Provider
	callTimeout time.Duration
	chunkChars  int
	post        func([]rawTransaction) []Transaction
	log         zerolog.Logger
}

// NewOrchestrator wires the fallback machine. chunkChars bounds the prepared
// text handed to a single call; longer inputs are chunked. post normalizes
// each attempt's raw records; an attempt is only a success when at least one
// record survives it.
func NewOrchestrator(providers []Provider, callTimeout time.Duration, chunkChars int, post func([]rawTransaction) []Transaction, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		providers:   providers,
		callTimeout: callTimeout,
		chunkChars:  chunkChars,
		post:        post,
		log:         log,
	}
}

// Extract runs the full fallback sequence over the prepared statement text
// and returns post-processed transactions. Returns ErrExtractionEmpty-backed
// AllProvidersFailedError only after every model of every provider has been
// exhausted.
func (o *Orchestrator) Extract(ctx context.Context, header string, lines []PreparedLine) ([]Transaction, error) {
	if len(o.providers) == 0 {
		return nil, &AllProvidersFailedError{Errs: []error{ErrExtractionEmpty}}
	}

	full := joinLines(header, lines)
	if len(full) <= o.chunkChars {
		return o.extractWithFallback(ctx, full)
	}

	// Sequential chunk processing keeps external request volume bounded and
	// the fallback decision uniform across chunks.
	chunks := ChunkLines(header, lines, o.chunkChars)
	var all []Transaction
	for i, chunk := range chunks {
		txs, err := o.extractWithFallback(ctx, chunk)
		if err != nil {
			return nil, err
		}
		o.log.Debug().Int("chunk", i+1).Int("chunks", len(chunks)).Int("transactions", len(txs)).
			Msg("chunk extracted")
		all = append(all, txs...)
	}
	if len(all) == 0 {
		return nil, &AllProvidersFailedError{Errs: []error{ErrExtractionEmpty}}
	}
	return all, nil
}

// extractWithFallback is the state machine for one text segment:
//
//	TRY(provider_1, models...) -> success with >=1 surviving tx: DONE
//	  -> failure or 0 surviving tx: TRY(provider_2, models...)
//	    -> failure: FAIL(aggregate of both providers' last errors)
func (o *Orchestrator) extractWithFallback(ctx context.Context, text string) ([]Transaction, error) {
	var lastErrs []error

	for _, provider := range o.providers {
		txs, outcome, lastErr := o.tryProvider(ctx, provider, text)
		switch outcome {
		case outcomeSuccess:
			return txs, nil
		case outcomeEmpty:
			lastErrs = append(lastErrs, &ProviderError{
				Provider: provider.Name(), Kind: ProviderResponseInvalid, Err: ErrExtractionEmpty,
			})
		case outcomeFailure:
			lastErrs = append(lastErrs, lastErr)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &AllProvidersFailedError{Errs: lastErrs}
}

// tryProvider walks one provider's model list in its fixed preference order.
// An attempt counts only when at least one record survives post-processing;
// a decoded-but-all-dropped response is an empty attempt and the walk moves
// on. Returns the provider's last error when every model fails.
func (o *Orchestrator) tryProvider(ctx context.Context, provider Provider, text string) ([]Transaction, attemptOutcome, error) {
	sawEmpty := false
	var lastErr error

	for _, model := range provider.Models() {
		if ctx.Err() != nil {
			return nil, outcomeFailure, ctx.Err()
		}

		raw, err := o.attempt(ctx, provider, model, text)
		if err != nil {
			o.log.Warn().Err(err).Str("provider", provider.Name()).Str("model", model).
				Msg("extraction attempt failed")
			lastErr = err
			continue
		}

		txs := o.post(raw)
		if len(txs) == 0 {
			o.log.Info().Str("provider", provider.Name()).Str("model", model).
				Int("extracted", len(raw)).Msg("extraction attempt yielded zero usable transactions")
			sawEmpty = true
			continue
		}

		o.log.Info().Str("provider", provider.Name()).Str("model", model).
			Int("transactions", len(txs)).Msg("extraction succeeded")
		return txs, outcomeSuccess, nil
	}

	if lastErr != nil {
		return nil, outcomeFailure, lastErr
	}
	if sawEmpty {
		return nil, outcomeEmpty, nil
	}
	return nil, outcomeFailure, &ProviderError{
		Provider: provider.Name(), Kind: ProviderCallFailed, Err: ErrExtractionEmpty,
	}
}

func (o *Orchestrator) attempt(ctx context.Context, provider Provider, model, text string) ([]rawTransaction, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return provider.Extract(callCtx, model, text)
}
