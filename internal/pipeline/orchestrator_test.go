package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts per-model outcomes and records every call so fallback
// order can be asserted.
type fakeProvider struct {
	name    string
	models  []string
	results map[string]func() ([]rawTransaction, error)
	calls   []string
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Models() []string { return f.models }

func (f *fakeProvider) Extract(ctx context.Context, model, text string) ([]rawTransaction, error) {
	f.calls = append(f.calls, model)
	if fn, ok := f.results[model]; ok {
		return fn()
	}
	return nil, errors.New("unscripted model")
}

func sampleTx(n int) []rawTransaction {
	txs := make([]rawTransaction, n)
	for i := range txs {
		txs[i] = rawTransaction{Amount: 10, Date: "2024-01-15", LineIndex: i + 1}
	}
	return txs
}

func testPost(raw []rawTransaction) []Transaction {
	return PostProcess(raw, nil, 0, HeaderMap{}, "USD", zerolog.Nop())
}

func newTestOrchestrator(providers ...Provider) *Orchestrator {
	return NewOrchestrator(providers, time.Second, 10000, testPost, zerolog.Nop())
}

func TestFallbackToSecondProvider(t *testing.T) {
	p1 := &fakeProvider{
		name:   "first",
		models: []string{"m1a"},
		results: map[string]func() ([]rawTransaction, error){
			"m1a": func() ([]rawTransaction, error) { return nil, nil }, // empty
		},
	}
	p2 := &fakeProvider{
		name:   "second",
		models: []string{"m2a"},
		results: map[string]func() ([]rawTransaction, error){
			"m2a": func() ([]rawTransaction, error) { return sampleTx(3), nil },
		},
	}

	o := newTestOrchestrator(p1, p2)
	txs, err := o.Extract(context.Background(), "HEADER: h", makeLines(2, 10))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	// Provider 1 is consulted exactly once and never again.
	require.Equal(t, []string{"m1a"}, p1.calls)
	require.Equal(t, []string{"m2a"}, p2.calls)
}

func TestModelFallbackWithinProvider(t *testing.T) {
	p := &fakeProvider{
		name:   "only",
		models: []string{"good-but-down", "backup"},
		results: map[string]func() ([]rawTransaction, error){
			"good-but-down": func() ([]rawTransaction, error) {
				return nil, &ProviderError{Provider: "only", Model: "good-but-down", Kind: ProviderCallFailed, Err: errors.New("HTTP 500")}
			},
			"backup": func() ([]rawTransaction, error) { return sampleTx(1), nil },
		},
	}

	o := newTestOrchestrator(p)
	txs, err := o.Extract(context.Background(), "HEADER: h", makeLines(2, 10))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, []string{"good-but-down", "backup"}, p.calls)
}

func TestAllProvidersFailed(t *testing.T) {
	fail := func(provider, model string) func() ([]rawTransaction, error) {
		return func() ([]rawTransaction, error) {
			return nil, &ProviderError{Provider: provider, Model: model, Kind: ProviderCallFailed, Err: errors.New("boom")}
		}
	}
	p1 := &fakeProvider{name: "first", models: []string{"a", "b"},
		results: map[string]func() ([]rawTransaction, error){"a": fail("first", "a"), "b": fail("first", "b")}}
	p2 := &fakeProvider{name: "second", models: []string{"c"},
		results: map[string]func() ([]rawTransaction, error){"c": fail("second", "c")}}

	o := newTestOrchestrator(p1, p2)
	_, err := o.Extract(context.Background(), "HEADER: h", makeLines(2, 10))

	var apf *AllProvidersFailedError
	require.ErrorAs(t, err, &apf)
	require.Len(t, apf.Errs, 2) // one last error per provider
	require.Contains(t, apf.Error(), "first")
	require.Contains(t, apf.Error(), "second")

	// Every model tried exactly once, in order.
	require.Equal(t, []string{"a", "b"}, p1.calls)
	require.Equal(t, []string{"c"}, p2.calls)
}

// An attempt whose records are all dropped in post-processing counts as
// empty, so the next provider gets its turn.
func TestFallbackWhenEveryRecordDropped(t *testing.T) {
	p1 := &fakeProvider{
		name:   "noisy",
		models: []string{"m1"},
		results: map[string]func() ([]rawTransaction, error){
			"m1": func() ([]rawTransaction, error) {
				return []rawTransaction{
					{Amount: 200, Direction: "credit", Date: "2024-01-15",
						Merchant: "CREDIT CARD PAYMENT THANK YOU", LineIndex: 1},
				}, nil
			},
		},
	}
	p2 := &fakeProvider{
		name:   "second",
		models: []string{"m2"},
		results: map[string]func() ([]rawTransaction, error){
			"m2": func() ([]rawTransaction, error) {
				return []rawTransaction{
					{Amount: 45, Direction: "debit", Date: "2024-01-16", Merchant: "Groceries", LineIndex: 2},
				}, nil
			},
		},
	}

	o := newTestOrchestrator(p1, p2)
	txs, err := o.Extract(context.Background(), "HEADER: h", makeLines(2, 10))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "Groceries", txs[0].Merchant)
	require.Equal(t, []string{"m1"}, p1.calls)
	require.Equal(t, []string{"m2"}, p2.calls)
}

func TestChunkedExtractionSequential(t *testing.T) {
	p := &fakeProvider{
		name:   "only",
		models: []string{"m"},
		results: map[string]func() ([]rawTransaction, error){
			"m": func() ([]rawTransaction, error) { return sampleTx(2), nil },
		},
	}

	o := NewOrchestrator([]Provider{p}, time.Second, 200, testPost, zerolog.Nop())
	txs, err := o.Extract(context.Background(), "HEADER: h", makeLines(20, 30))
	require.NoError(t, err)

	// Each chunk contributes its transactions in chunk order.
	require.Equal(t, len(p.calls)*2, len(txs))
	require.Greater(t, len(p.calls), 1)
}

func TestCancellationStopsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p1 := &fakeProvider{
		name:   "first",
		models: []string{"m"},
		results: map[string]func() ([]rawTransaction, error){
			"m": func() ([]rawTransaction, error) {
				cancel()
				return nil, errors.New("interrupted")
			},
		},
	}
	p2 := &fakeProvider{name: "second", models: []string{"never"}}

	o := newTestOrchestrator(p1, p2)
	_, err := o.Extract(ctx, "HEADER: h", makeLines(2, 10))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, p2.calls)
}
