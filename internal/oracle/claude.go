// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// defaultClaudeURL is the Claude Messages API endpoint.
const defaultClaudeURL = "https://api.anthropic.com/v1/messages"

const defaultTimeout = 120 * time.Second

// Claude answers questions through the Claude Messages API.
type Claude struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	Client     *http.Client
}

// NewClaude builds a Claude oracle from config.
func NewClaude(cfg types.OracleConfig) *Claude {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Claude{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: timeout},
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   claudeUsage     `json:"usage"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// claudeUsage holds the token accounting returned with each response.
type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Ask sends the answer prompt for one context and decodes the JSON
// answer list. An empty context returns the no-answer sentinel without
// a network call.
func (c *Claude) Ask(ctx context.Context, question, contextText string) (types.Answer, Cost, error) {
	if emptyContext(contextText) {
		return types.NoAnswer(), Cost{}, nil
	}

	prompt, err := renderAnswerPrompt(question, contextText)
	if err != nil {
		return types.Answer{}, Cost{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, cost, err := c.Complete(ctx, prompt)
	if err != nil {
		return types.Answer{}, cost, err
	}

	answer, err := ParseAnswer(raw)
	if err != nil {
		return types.Answer{}, cost, err
	}
	return answer, cost, nil
}

// Complete issues one Messages API call with prompt as the sole user
// message and returns the text of the first text content block plus its
// token cost.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, Cost, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", Cost{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.BaseURL
	if url == "" {
		url = defaultClaudeURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", Cost{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return "", Cost{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", Cost{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", Cost{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	cost := Cost{
		InputTokens:  cResp.Usage.InputTokens,
		OutputTokens: cResp.Usage.OutputTokens,
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, cost, nil
		}
	}
	return "", cost, fmt.Errorf("no text content in Claude API response")
}
