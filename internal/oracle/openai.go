// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// OpenAI answers questions through the chat completions API. A BaseURL
// override points the client at OpenAI-compatible local servers
// (llama.cpp, vLLM, Ollama), which is the usual way to run large
// minimization batches without API spend.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds an OpenAI-compatible oracle from config.
func NewOpenAI(cfg types.OracleConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Ask sends the answer prompt as a single-turn chat completion and
// decodes the JSON answer list. An empty context returns the no-answer
// sentinel without a network call.
func (o *OpenAI) Ask(ctx context.Context, question, contextText string) (types.Answer, Cost, error) {
	if emptyContext(contextText) {
		return types.NoAnswer(), Cost{}, nil
	}

	prompt, err := renderAnswerPrompt(question, contextText)
	if err != nil {
		return types.Answer{}, Cost{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, cost, err := o.Complete(ctx, prompt)
	if err != nil {
		return types.Answer{}, cost, err
	}

	answer, err := ParseAnswer(raw)
	if err != nil {
		return types.Answer{}, cost, err
	}
	return answer, cost, nil
}

// Complete issues one chat completion with prompt as the sole user
// message and returns the reply text plus its token cost.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, Cost, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", Cost{}, fmt.Errorf("calling chat completions API: %w", err)
	}

	cost := Cost{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	if len(resp.Choices) == 0 {
		return "", cost, fmt.Errorf("chat completions API returned no choices")
	}
	return resp.Choices[0].Message.Content, cost, nil
}
