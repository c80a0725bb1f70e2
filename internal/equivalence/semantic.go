// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package equivalence

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// judgmentPromptTmpl asks the model for a yes/no equivalence verdict.
// Sent as a raw completion, so this is the entire instruction the model
// sees; the response reuses the JSON answer-list contract with a single
// "yes" or "no" entry.
var judgmentPromptTmpl = template.Must(template.New("judgment").Parse(`Two answers to the same question are listed below. Decide whether they state the same facts, allowing different wording, ordering, and formatting.

Respond with {"answers": ["yes"]} if they are equivalent or {"answers": ["no"]} if they are not. Do not include any text outside the JSON object.

Question:
{{.Question}}

Answer A:
{{range .A}}- {{.}}
{{end}}
Answer B:
{{range .B}}- {{.}}
{{end}}`))

// Semantic compares answers by asking the backend for a judgment
// through its raw-completion surface. The lexical comparison runs first
// as a zero-cost fast path; an unusable judgment falls back on the
// conservative verdict (not equivalent).
type Semantic struct {
	completer oracle.Completer
	lexical   *Lexical
}

// NewSemantic builds a semantic checker over the given backend, with
// lexical pre-screening configured from cfg.
func NewSemantic(c oracle.Completer, cfg types.EngineConfig) *Semantic {
	return &Semantic{completer: c, lexical: NewLexical(cfg)}
}

// Equivalent applies the sentinel rule, then the lexical fast path,
// then the backend judgment.
func (s *Semantic) Equivalent(ctx context.Context, a, b types.Answer, question string) (bool, error) {
	if a.IsNoAnswer() || b.IsNoAnswer() {
		return false, nil
	}

	if ok, _ := s.lexical.Equivalent(ctx, a, b, question); ok {
		return true, nil
	}

	prompt, err := renderJudgmentPrompt(question, a, b)
	if err != nil {
		return false, fmt.Errorf("rendering judgment prompt: %w", err)
	}

	raw, _, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("asking equivalence judgment: %w", err)
	}

	// Unusable verdicts are conservative: not equivalent only ever
	// enlarges a provenance, never makes one wrong.
	verdict, err := oracle.ParseAnswer(raw)
	if err != nil || len(verdict.Strings) != 1 {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(verdict.Strings[0]), "yes"), nil
}

func renderJudgmentPrompt(question string, a, b types.Answer) (string, error) {
	var buf bytes.Buffer
	err := judgmentPromptTmpl.Execute(&buf, struct {
		Question string
		A, B     []string
	}{Question: question, A: a.Strings, B: b.Strings})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ForMetric returns the checker selected by the engine config. The
// semantic metric needs a backend; the lexical metric ignores it.
func ForMetric(c oracle.Completer, cfg types.EngineConfig) Checker {
	if cfg.Metric == types.MetricSemantic {
		return NewSemantic(c, cfg)
	}
	return NewLexical(cfg)
}
