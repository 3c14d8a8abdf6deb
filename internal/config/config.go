// Package config collects every environment-driven setting into one
// immutable struct built once per process. Nothing else in the codebase
// reads environment variables directly.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full configuration surface of the service.
type Config struct {
	Port string

	// DisableExternalCalls is the kill switch: deterministic-only mode,
	// no provider is ever contacted.
	DisableExternalCalls bool

	StrictPrivacy  bool
	RedactionWords []string

	GeminiAPIKey string
	GeminiModels []string

	ChatAPIKey string
	ChatAPIURL string
	ChatModels []string

	DefaultCurrency string
	MaxUploadBytes  int64
	ChunkMaxChars   int
	CallTimeout     time.Duration

	Debug bool
}

// Defaults used when the corresponding variable is unset.
const (
	defaultPort           = "8080"
	defaultCurrency       = "USD"
	defaultMaxUploadBytes = 16 << 20
	defaultChunkMaxChars  = 12000
	defaultCallTimeout    = 60 * time.Second
	defaultChatAPIURL     = "https://api.openai.com/v1/chat/completions"
)

var (
	defaultGeminiModels = []string{"gemini-2.5-flash", "gemini-2.0-flash"}
	defaultChatModels   = []string{"gpt-4o-mini", "gpt-4o"}
)

// FromEnv builds the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Port:                 envString("PORT", defaultPort),
		DisableExternalCalls: envBool("DISABLE_EXTERNAL_CALLS"),
		StrictPrivacy:        envBool("STRICT_PRIVACY"),
		RedactionWords:       envList("REDACTION_WORDS", nil),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModels:         envList("GEMINI_MODELS", defaultGeminiModels),
		ChatAPIKey:           os.Getenv("CHAT_API_KEY"),
		ChatAPIURL:           envString("CHAT_API_URL", defaultChatAPIURL),
		ChatModels:           envList("CHAT_MODELS", defaultChatModels),
		DefaultCurrency:      strings.ToUpper(envString("DEFAULT_CURRENCY", defaultCurrency)),
		MaxUploadBytes:       envInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		ChunkMaxChars:        int(envInt64("CHUNK_MAX_CHARS", defaultChunkMaxChars)),
		CallTimeout:          time.Duration(envInt64("PROVIDER_TIMEOUT_SECONDS", int64(defaultCallTimeout/time.Second))) * time.Second,
		Debug:                envBool("DEBUG"),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func envInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
