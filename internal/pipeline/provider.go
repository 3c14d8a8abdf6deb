package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider is one external extraction service exposing an ordered list of
// model variants. Extract performs a single model attempt; the orchestrator
// owns ordering, fallback and timeouts.
type Provider interface {
	Name() string
	Models() []string
	Extract(ctx context.Context, model, statementText string) ([]rawTransaction, error)
}

// cleanModelJSON strips markdown code fences and surrounding junk that
// models emit despite instructions, keeping only the JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON array, keep only from the first
	// '[' to the last ']'.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// decodeTransactions parses a model's text output into raw transactions.
func decodeTransactions(raw string) ([]rawTransaction, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var txs []rawTransaction
	if err := json.Unmarshal([]byte(clean), &txs); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}
	return txs, nil
}
