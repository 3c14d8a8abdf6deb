package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	if New(false).GetLevel() != zerolog.InfoLevel {
		t.Error("expected info level by default")
	}
	if New(true).GetLevel() != zerolog.DebugLevel {
		t.Error("expected debug level when debug is on")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("expected output to contain message, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	stored := NewWithWriter(buf)

	ctx := WithContext(context.Background(), stored)
	log := FromContext(ctx)
	log.Info().Msg("via context")

	if buf.Len() == 0 {
		t.Error("expected output from the logger stored in context")
	}
}

func TestFromContextDefault(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected a usable default logger")
	}
}
