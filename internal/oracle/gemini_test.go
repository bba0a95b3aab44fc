package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region helpers

func newGeminiTestServer(t *testing.T, status int, body string, got *map[string]any) *GeminiCompleter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), "path %s", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultEndpointConfig()
	cfg.Provider = ProviderGemini
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	c, err := NewGeminiCompleter(context.Background(), cfg)
	require.NoError(t, err)
	return c
}

// #endregion helpers

// #region gemini-tests

func TestGeminiCompleter_Complete(t *testing.T) {
	var got map[string]any
	c := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":" вырастил томаты на балконе \n"}]}}]}`, &got)

	text, err := c.Complete(context.Background(), CompletionRequest{
		System:      "ты генератор",
		Prompt:      "придумай действие",
		Temperature: 0.9,
	})
	require.NoError(t, err)
	assert.Equal(t, "вырастил томаты на балконе", text)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "придумай действие")
	assert.Contains(t, got, "systemInstruction")
	gc, ok := got["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing in %v", got)
	assert.InDelta(t, 0.9, gc["temperature"], 1e-6)
}

func TestGeminiCompleter_EmptyText(t *testing.T) {
	c := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`, nil)

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "оцени"})
	assert.True(t, errors.Is(err, ErrEmptyCompletion), "got %v", err)
}

func TestGeminiCompleter_APIError(t *testing.T) {
	c := newGeminiTestServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "оцени"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyCompletion))
}

func TestNewGeminiCompleter_RequiresKey(t *testing.T) {
	cfg := DefaultEndpointConfig()
	cfg.Provider = ProviderGemini
	cfg.APIKey = ""
	_, err := NewGeminiCompleter(context.Background(), cfg)
	assert.Error(t, err)
}

// #endregion gemini-tests
