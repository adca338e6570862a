// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package caption describes images with a vision-capable chat model.
package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/mdconvert/internal/httputil"
	"github.com/pdiddy/mdconvert/pkg/types"
)

const (
	// DefaultModel is used when the configuration leaves the model empty.
	DefaultModel = "gpt-4o"
	// DefaultPrompt asks for the same kind of caption markitdown requests.
	DefaultPrompt = "Write a detailed caption for this image."

	defaultMaxTokens = 1024
)

// openAIURL is the Chat Completions endpoint. Package-level var for test substitution.
var openAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAICaptioner calls the OpenAI Chat Completions API with the image
// inlined as a data URL.
type OpenAICaptioner struct {
	APIKey     string
	Model      string
	Prompt     string
	MaxRetries int
	Client     *http.Client
}

// NewOpenAICaptioner builds a captioner from configuration, filling defaults.
func NewOpenAICaptioner(cfg types.LLMConfig) (*OpenAICaptioner, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	c := &OpenAICaptioner{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Prompt:     cfg.Prompt,
		MaxRetries: cfg.MaxRetries,
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	return c, nil
}

// chatRequest is the request body for the Chat Completions API.
type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

// chatMessage is one message whose content mixes text and image parts.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatResponse is the subset of the Chat Completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Caption asks the model to describe image.
func (c *OpenAICaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/png"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	reqBody := chatRequest{
		Model:     c.Model,
		MaxTokens: defaultMaxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: c.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}
