package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatAPIProvider drives any OpenAI-compatible chat-completions endpoint.
// The wire format is small enough to marshal by hand; no client SDK needed.
type ChatAPIProvider struct {
	name    string
	baseURL string
	apiKey  string
	models  []string
	client  *http.Client
}

// NewChatAPIProvider creates the provider. baseURL is the full
// chat-completions URL (e.g. "https://api.openai.com/v1/chat/completions").
func NewChatAPIProvider(name, baseURL, apiKey string, models []string, timeout time.Duration) *ChatAPIProvider {
	return &ChatAPIProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		models:  models,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *ChatAPIProvider) Name() string { return p.name }

func (p *ChatAPIProvider) Models() []string { return p.models }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Extract performs one model attempt against the chat-completions API.
func (p *ChatAPIProvider) Extract(ctx context.Context, model, statementText string) ([]rawTransaction, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt + "\n" + rulesPrompt},
			{Role: "user", Content: buildUserPrompt(statementText)},
		},
		Temperature: 0,
		ResponseFormat: json.RawMessage(
			`{"type":"json_schema","json_schema":{"name":"statement_transactions","schema":` + extractionSchema + `}}`),
	})
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed,
			Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderResponseInvalid,
			Err: fmt.Errorf("decode response envelope: %w", err)}
	}
	if parsed.Error != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderCallFailed,
			Err: fmt.Errorf("API error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderResponseInvalid,
			Err: fmt.Errorf("no choices in response")}
	}

	txs, err := decodeTransactions(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, &ProviderError{Provider: p.name, Model: model, Kind: ProviderResponseInvalid, Err: err}
	}
	return txs, nil
}
