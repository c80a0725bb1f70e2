// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle adapts Generative AI APIs into the semantic oracle used
// by the minimization engine: given a question and a context string,
// return the answer the model produces from that context alone.
package oracle

import (
	"context"
	"fmt"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Cost measures one or more oracle calls in API tokens.
type Cost struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Add accumulates another cost into c.
func (c *Cost) Add(other Cost) {
	c.InputTokens += other.InputTokens
	c.OutputTokens += other.OutputTokens
}

// Oracle answers a question from a context string. Implementations are
// black boxes; the engine never inspects how an answer was produced.
//
// An empty or whitespace-only context must short-circuit to the
// no-answer sentinel at zero cost without invoking the backend.
// Transport and parse failures are returned as errors and abort the
// caller's run; retry policy, if any, lives inside the adapter.
type Oracle interface {
	Ask(ctx context.Context, question, contextText string) (types.Answer, Cost, error)
}

// Completer sends one raw prompt to the backend and returns the model's
// reply text verbatim. The caller owns the whole prompt; nothing is
// wrapped around it. Used by call paths with their own response
// contract (block scoring, equivalence judgments).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, Cost, error)
}

// Backend is a full oracle adapter: the question-answering surface plus
// raw completions.
type Backend interface {
	Oracle
	Completer
}

// New builds the oracle backend selected by cfg.
func New(cfg types.OracleConfig) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderClaude:
		return NewClaude(cfg), nil
	case types.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
