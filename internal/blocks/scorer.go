// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blocks

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// scoringPromptTmpl asks the model to rate each numbered passage 1-10
// for relevance to the question and answer. Sent as a raw completion,
// so this is the entire instruction the model sees; the response reuses
// the JSON answer-list contract, one numeric string per passage.
var scoringPromptTmpl = template.Must(template.New("scoring").Parse(`Rate how relevant each numbered passage below is to answering the question. Use an integer from 1 (irrelevant) to 10 (contains the answer).

Respond with a JSON object containing an "answers" array with exactly one integer string per passage, in passage order, e.g. {"answers": ["3", "9", "1"]}. Do not include any text outside the JSON object.

Question:
{{.Question}}

Known answer:
{{range .Answer}}- {{.}}
{{end}}
Passages:
{{range $i, $b := .Blocks}}[{{$i}}] {{$b}}
{{end}}`))

// OracleScorer rates blocks through the backend's raw-completion
// surface.
type OracleScorer struct {
	completer oracle.Completer
}

// NewOracleScorer wraps a backend as a block scorer.
func NewOracleScorer(c oracle.Completer) *OracleScorer {
	return &OracleScorer{completer: c}
}

// ScoreBlocks sends one scoring prompt covering every block and parses
// the numeric verdicts. A malformed or miscounted response is an error;
// the caller falls back to unscored (left-first) ordering.
func (s *OracleScorer) ScoreBlocks(ctx context.Context, blockTexts []string, question string, answer types.Answer) ([]float64, error) {
	var buf bytes.Buffer
	err := scoringPromptTmpl.Execute(&buf, struct {
		Question string
		Answer   []string
		Blocks   []string
	}{Question: question, Answer: answer.Strings, Blocks: blockTexts})
	if err != nil {
		return nil, fmt.Errorf("rendering scoring prompt: %w", err)
	}

	raw, _, err := s.completer.Complete(ctx, buf.String())
	if err != nil {
		return nil, err
	}
	verdict, err := oracle.ParseAnswer(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing scoring response: %w", err)
	}
	if len(verdict.Strings) != len(blockTexts) {
		return nil, fmt.Errorf("got %d scores for %d blocks", len(verdict.Strings), len(blockTexts))
	}

	scores := make([]float64, len(verdict.Strings))
	for i, rawScore := range verdict.Strings {
		v, err := strconv.ParseFloat(strings.TrimSpace(rawScore), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing score %q: %w", rawScore, err)
		}
		if v < 1 || v > 10 {
			return nil, fmt.Errorf("score %v out of range [1,10]", v)
		}
		scores[i] = v
	}
	return scores, nil
}
