// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package equivalence

import (
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

func answer(strs ...string) types.Answer {
	return types.Answer{Strings: strs}
}

func TestLexicalEquivalent(t *testing.T) {
	l := NewLexical(types.EngineConfig{})

	tests := []struct {
		name string
		a, b types.Answer
		want bool
	}{
		{"identical", answer("Paris"), answer("Paris"), true},
		{"case and punctuation", answer("Paris."), answer("paris"), true},
		{"order insensitive", answer("red", "blue"), answer("blue", "red"), true},
		{"different strings", answer("Paris"), answer("London"), false},
		{"differing cardinality", answer("red", "blue"), answer("red"), false},
		{"no-answer left", types.NoAnswer(), answer("Paris"), false},
		{"no-answer right", answer("Paris"), types.NoAnswer(), false},
		{"both no-answer", types.NoAnswer(), types.NoAnswer(), false},
		{
			"near-duplicate long strings",
			answer("the mitochondria is the powerhouse of the cell"),
			answer("the mitochondria is the powerhouse of the cells"),
			true,
		},
		{
			"short strings need exact match",
			answer("cat"), answer("car"),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Equivalent(context.Background(), tt.a, tt.b, "q")
			if err != nil {
				t.Fatalf("Equivalent: %v", err)
			}
			if got != tt.want {
				t.Errorf("Equivalent(%v, %v) = %v, want %v", tt.a.Strings, tt.b.Strings, got, tt.want)
			}
		})
	}
}

func TestLexicalSymmetric(t *testing.T) {
	l := NewLexical(types.EngineConfig{})
	a := answer("a fairly long answer string here")
	b := answer("a fairly long answer string there")

	ab, _ := l.Equivalent(context.Background(), a, b, "q")
	ba, _ := l.Equivalent(context.Background(), b, a, "q")
	if ab != ba {
		t.Errorf("asymmetric: a~b=%v but b~a=%v", ab, ba)
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("abc", "abc"); s != 1 {
		t.Errorf("similarity(abc, abc) = %v, want 1", s)
	}
	if s := similarity("abcd", "abce"); s != 0.75 {
		t.Errorf("similarity(abcd, abce) = %v, want 0.75", s)
	}
	if s := similarity("", "abcd"); s != 0 {
		t.Errorf("similarity with empty = %v, want 0", s)
	}
}

// judgeOracle returns a fixed raw completion for every judgment request.
type judgeOracle struct {
	raw    string
	calls  int
	prompt string
}

func (o *judgeOracle) Complete(_ context.Context, prompt string) (string, oracle.Cost, error) {
	o.calls++
	o.prompt = prompt
	return o.raw, oracle.Cost{}, nil
}

// verdict wraps a yes/no word in the JSON answer contract the judgment
// prompt asks for.
func verdict(word string) string {
	return `{"answers": ["` + word + `"]}`
}

func TestSemanticUsesLexicalFastPath(t *testing.T) {
	judge := &judgeOracle{raw: verdict("no")}
	s := NewSemantic(judge, types.EngineConfig{})

	got, err := s.Equivalent(context.Background(), answer("Paris"), answer("paris"), "q")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	if !got {
		t.Error("lexically equal answers must be equivalent without asking the oracle")
	}
	if judge.calls != 0 {
		t.Errorf("oracle was asked %d times on the fast path", judge.calls)
	}
}

func TestSemanticAsksOracle(t *testing.T) {
	judge := &judgeOracle{raw: verdict("YES")}
	s := NewSemantic(judge, types.EngineConfig{})

	got, err := s.Equivalent(context.Background(), answer("14 May 1948"), answer("May 14, 1948"), "q")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	if !got {
		t.Error("a yes verdict must make the answers equivalent")
	}
	if judge.calls != 1 {
		t.Errorf("oracle calls = %d, want 1", judge.calls)
	}
}

func TestSemanticNoAnswerSentinelSkipsOracle(t *testing.T) {
	judge := &judgeOracle{raw: verdict("yes")}
	s := NewSemantic(judge, types.EngineConfig{})

	got, err := s.Equivalent(context.Background(), types.NoAnswer(), answer("Paris"), "q")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	if got {
		t.Error("no-answer must never be equivalent")
	}
	if judge.calls != 0 {
		t.Errorf("oracle calls = %d, want 0", judge.calls)
	}
}

func TestSemanticUnusableVerdictIsConservative(t *testing.T) {
	judge := &judgeOracle{raw: verdict("maybe")}
	s := NewSemantic(judge, types.EngineConfig{})

	got, err := s.Equivalent(context.Background(), answer("one"), answer("two"), "q")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	if got {
		t.Error("an unusable verdict must read as not equivalent")
	}
}

func TestSemanticMalformedCompletionIsConservative(t *testing.T) {
	judge := &judgeOracle{raw: "I cannot tell."}
	s := NewSemantic(judge, types.EngineConfig{})

	got, err := s.Equivalent(context.Background(), answer("one"), answer("two"), "q")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	if got {
		t.Error("a completion that is not the JSON contract must read as not equivalent")
	}
}

func TestSemanticPromptCarriesQuestionAndAnswers(t *testing.T) {
	judge := &judgeOracle{raw: verdict("yes")}
	s := NewSemantic(judge, types.EngineConfig{})

	_, err := s.Equivalent(context.Background(), answer("14 May 1948"), answer("May 14, 1948"), "When was Israel founded?")
	if err != nil {
		t.Fatalf("Equivalent: %v", err)
	}
	for _, want := range []string{"When was Israel founded?", "14 May 1948", "May 14, 1948"} {
		if !strings.Contains(judge.prompt, want) {
			t.Errorf("judgment prompt missing %q", want)
		}
	}
}

func TestForMetric(t *testing.T) {
	judge := &judgeOracle{raw: verdict("yes")}

	if _, ok := ForMetric(judge, types.EngineConfig{Metric: types.MetricSemantic}).(*Semantic); !ok {
		t.Error("semantic metric should select the semantic checker")
	}
	if _, ok := ForMetric(judge, types.EngineConfig{Metric: types.MetricLexical}).(*Lexical); !ok {
		t.Error("lexical metric should select the lexical checker")
	}
	if _, ok := ForMetric(judge, types.EngineConfig{}).(*Lexical); !ok {
		t.Error("unset metric should default to lexical")
	}
}
