package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// Options is the per-process pipeline configuration, built once from the
// application config and passed by parameter.
type Options struct {
	DefaultCurrency string
	StrictPrivacy   bool
	RedactionWords  []string

	// DisableExternalCalls forces deterministic-only mode; the providers are
	// never contacted.
	DisableExternalCalls bool

	// ChunkMaxChars bounds the statement text handed to one provider call.
	ChunkMaxChars int

	// CallTimeout bounds each individual external call.
	CallTimeout time.Duration
}

// Service runs the full ingestion pipeline: raw file bytes in, normalized
// transactions out. One request is one unit of work; there is no shared
// mutable state across requests and nothing is persisted.
type Service struct {
	opts      Options
	providers []Provider
	redactor  *Redactor
	log       zerolog.Logger
}

// NewService wires the pipeline. The provider list is ordered: earlier
// providers are preferred, later ones are fallbacks.
func NewService(opts Options, providers []Provider, log zerolog.Logger) *Service {
	return &Service{
		opts:      opts,
		providers: providers,
		redactor:  NewRedactor(opts.StrictPrivacy, opts.RedactionWords),
		log:       log,
	}
}

// Ingest turns an uploaded statement into a transaction list.
//
// Flow: read -> locate header -> deterministic baseline (always) -> AI path
// (prepare, redact, chunk, orchestrate) unless disabled. Post-processing runs
// inside the orchestrator on every attempt, so an attempt whose records are
// all dropped advances the fallback instead of ending it. The AI result
// supersedes the baseline when non-empty; when every provider is exhausted
// the baseline is returned if it has anything, otherwise the terminal error
// surfaces.
func (s *Service) Ingest(ctx context.Context, data []byte) ([]Transaction, error) {
	grid, err := sheet.Read(data)
	if err != nil {
		return nil, err
	}

	headerRow, hm := LocateHeader(grid)
	s.log.Debug().Int("header_row", headerRow).Int("mapped_fields", len(hm)).
		Int("rows", len(grid)).Msg("header located")

	baseline := ParseDeterministic(grid, headerRow, hm, s.opts.DefaultCurrency)
	s.log.Info().Int("transactions", len(baseline)).Msg("deterministic baseline parsed")

	if s.opts.DisableExternalCalls || len(s.providers) == 0 {
		return baseline, nil
	}

	header, lines := PrepareLines(grid, headerRow, s.redactor)
	if len(lines) == 0 {
		return baseline, nil
	}

	post := func(raw []rawTransaction) []Transaction {
		return PostProcess(raw, grid, headerRow, hm, s.opts.DefaultCurrency, s.log)
	}

	orch := NewOrchestrator(s.providers, s.opts.CallTimeout, s.opts.ChunkMaxChars, post, s.log)
	final, err := orch.Extract(ctx, header, lines)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Caller is gone; partial results are discarded by contract.
			return nil, err
		}
		var apf *AllProvidersFailedError
		if errors.As(err, &apf) && len(baseline) > 0 {
			s.log.Warn().Err(err).Msg("extraction providers exhausted, using deterministic baseline")
			return baseline, nil
		}
		return nil, err
	}

	return final, nil
}
