// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// answerPromptTmpl is the prompt sent to the model for each sufficiency
// probe. It constrains the model to the supplied context and to a JSON
// answer-list response so that answers from different subsets can be
// compared mechanically.
var answerPromptTmpl = template.Must(template.New("answer").Parse(`You are a question answering system. Answer the question using ONLY the context below. Do not use any outside knowledge.

Rules:
- If the context contains the answer, respond with a JSON object containing an "answers" array of short answer strings.
- A question may have several answers; list each one as a separate string.
- If the context does not contain enough information to answer, respond with {"answers": []}.
- Do not include any text outside the JSON object.

Example response:
{"answers": ["14 May 1948"]}

Question:
{{.Question}}

Context:
{{.Context}}
`))

// renderAnswerPrompt executes the answer prompt template.
func renderAnswerPrompt(question, contextText string) (string, error) {
	var buf bytes.Buffer
	err := answerPromptTmpl.Execute(&buf, struct{ Question, Context string }{
		Question: question,
		Context:  contextText,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseAnswer decodes a JSON answer-list response. Models occasionally
// wrap the object in a Markdown code fence; that wrapping is tolerated.
// Exported because block scoring and equivalence judgments reuse the
// answer-list contract for their own verdicts.
func ParseAnswer(raw string) (types.Answer, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var answer types.Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return types.Answer{}, fmt.Errorf("parsing answer JSON: %w", err)
	}
	return answer, nil
}

// emptyContext reports whether contextText short-circuits to no-answer.
func emptyContext(contextText string) bool {
	return strings.TrimSpace(contextText) == ""
}
