// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package caption

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mdconvert/internal/httputil"
	"github.com/pdiddy/mdconvert/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// useServer points the package at ts for the duration of the test.
func useServer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	old := openAIURL
	openAIURL = ts.URL
	t.Cleanup(func() { openAIURL = old })
}

func TestNewOpenAICaptioner(t *testing.T) {
	_, err := NewOpenAICaptioner(types.LLMConfig{})
	require.Error(t, err)

	c, err := NewOpenAICaptioner(types.LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model)
	assert.Equal(t, DefaultPrompt, c.Prompt)

	c, err = NewOpenAICaptioner(types.LLMConfig{APIKey: "sk-test", Model: "gpt-4.1-mini", Prompt: "Describe."})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", c.Model)
	assert.Equal(t, "Describe.", c.Prompt)
}

func TestCaption_SendsImageAndReturnsText(t *testing.T) {
	var got chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A bar chart of quarterly revenue.\n"}}]}`))
	}))
	defer ts.Close()
	useServer(t, ts)

	c, err := NewOpenAICaptioner(types.LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	c.Client = ts.Client()

	text, err := c.Caption(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "A bar chart of quarterly revenue.", text)

	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, DefaultPrompt, parts[0].Text)
	require.NotNil(t, parts[1].ImageURL)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	assert.Equal(t, DefaultModel, got.Model)
}

func TestCaption_RetriesWhenThrottled(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a cat"}}]}`))
	}))
	defer ts.Close()
	useServer(t, ts)

	c := &OpenAICaptioner{APIKey: "k", Model: DefaultModel, Prompt: DefaultPrompt, Client: ts.Client()}
	text, err := c.Caption(context.Background(), []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "a cat", text)
	assert.Equal(t, 2, calls)
}

func TestCaption_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "returned 401"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"malformed", http.StatusOK, `not json`, "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			useServer(t, ts)

			c := &OpenAICaptioner{APIKey: "k", Model: DefaultModel, Prompt: DefaultPrompt, Client: ts.Client()}
			_, err := c.Caption(context.Background(), []byte("img"), "image/png")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
