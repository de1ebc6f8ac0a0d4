package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealsheet/internal/config"
	"dealsheet/internal/domain"
	"dealsheet/internal/parser"
	"dealsheet/internal/parser/claude"
	"dealsheet/internal/port"
)

var request = port.CompletionRequest{System: "system prompt", User: "document text"}

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *claude.Completer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return claude.NewCompleterWithEndpoint(&config.ParserProviderConfig{APIKey: "test-key"}, server.URL)
}

func TestCompleter_Success(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "system prompt", req["system"])
		assert.Equal(t, "claude-sonnet-4-20250514", req["model"])

		_, _ = w.Write([]byte(`{"model":"claude-sonnet-4-20250514","content":[{"type":"text","text":"{\"deal\":"},{"type":"text","text":"{}}"}],"stop_reason":"end_turn"}`))
	})

	resp, err := c.Complete(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, `{"deal":{}}`, resp.Content)
	assert.Equal(t, "claude-sonnet-4-20250514", resp.Model)
}

func TestCompleter_RateLimit(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), request)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 60.0, rlErr.RetryAfter.Seconds())
}

func TestCompleter_Truncated(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{"}],"stop_reason":"max_tokens"}`))
	})

	_, err := c.Complete(context.Background(), request)
	assert.ErrorIs(t, err, domain.ErrService)
	assert.Contains(t, err.Error(), "truncated")
}

func TestCompleter_EmptyContent(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := c.Complete(context.Background(), request)
	assert.ErrorIs(t, err, domain.ErrService)
}
