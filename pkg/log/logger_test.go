package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := With(zerolog.New(&buf), Fields{"service": "auth-api", "env": "test"})

	logger.Info().Msg("started")

	line := buf.String()
	if !strings.Contains(line, `"service":"auth-api"`) || !strings.Contains(line, `"env":"test"`) {
		t.Fatalf("fields missing from output: %s", line)
	}
}

func TestWithoutFieldsIsUnchanged(t *testing.T) {
	var buf bytes.Buffer
	logger := With(zerolog.New(&buf), nil)

	logger.Info().Msg("started")

	if !strings.Contains(buf.String(), `"message":"started"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
