package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageServer(t *testing.T, content string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": ` + content + `,
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_JoinsTextBlocks(t *testing.T) {
	var req map[string]interface{}
	srv := messageServer(t, `[{"type":"text","text":"{\"answer\":"},{"type":"text","text":"\"ok\"}"}]`, &req)

	c := NewClient("test-key", WithModel("claude-test"), WithMaxTokens(256),
		WithRequestOptions(option.WithBaseURL(srv.URL), option.WithMaxRetries(0)))

	text, err := c.Generate(context.Background(), "How do I save more?")
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, text)

	assert.Equal(t, "claude-test", req["model"])
	assert.Equal(t, float64(256), req["max_tokens"])
	assert.Equal(t, "claude-test", c.Model())
}

func TestGenerate_NoText(t *testing.T) {
	srv := messageServer(t, `[]`, nil)

	c := NewClient("test-key", WithRequestOptions(option.WithBaseURL(srv.URL), option.WithMaxRetries(0)))
	_, err := c.Generate(context.Background(), "hi")
	assert.True(t, errors.Is(err, ErrNoContent))
}

func TestGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithRequestOptions(option.WithBaseURL(srv.URL), option.WithMaxRetries(0)))
	_, err := c.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	c := NewClient("k", WithModel(""), WithMaxTokens(0))
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, int64(DefaultMaxTokens), c.maxTokens)
	assert.Len(t, c.requestOpts, 1, "api key only")
}

func TestWithRequestOptions_Accumulates(t *testing.T) {
	var apiKey, custom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		custom = r.Header.Get("X-Advisor-Run")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key",
		WithRequestOptions(option.WithBaseURL(srv.URL)),
		WithRequestOptions(option.WithMaxRetries(0), option.WithHeader("X-Advisor-Run", "r1")),
	)
	require.Len(t, c.requestOpts, 4)

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "r1", custom)
}
