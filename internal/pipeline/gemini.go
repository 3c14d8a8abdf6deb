package pipeline

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider drives Google's Gemini models through the genai SDK.
type GeminiProvider struct {
	apiKey string
	models []string
}

// NewGeminiProvider creates the provider with its ordered model preference
// list. The list is fixed per process; the orchestrator walks it in order.
func NewGeminiProvider(apiKey string, models []string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, models: models}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Models() []string { return p.models }

// Extract performs one model attempt against Gemini.
func (p *GeminiProvider) Extract(ctx context.Context, model, statementText string) ([]rawTransaction, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: model, Kind: ProviderCallFailed,
			Err: fmt.Errorf("create genai client: %w", err)}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemPrompt + "\n" + rulesPrompt},
				{Text: buildUserPrompt(statementText)},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: model, Kind: ProviderCallFailed,
			Err: fmt.Errorf("generate content: %w", err)}
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, &ProviderError{Provider: p.Name(), Model: model, Kind: ProviderResponseInvalid,
			Err: fmt.Errorf("empty response from model")}
	}

	txs, err := decodeTransactions(rawText)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Model: model, Kind: ProviderResponseInvalid, Err: err}
	}
	return txs, nil
}
