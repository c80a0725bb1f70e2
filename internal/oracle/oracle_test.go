// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"plain object", `{"answers": ["14 May 1948"]}`, []string{"14 May 1948"}, false},
		{"multiple answers", `{"answers": ["red", "blue"]}`, []string{"red", "blue"}, false},
		{"empty list", `{"answers": []}`, []string{}, false},
		{"json code fence", "```json\n{\"answers\": [\"Paris\"]}\n```", []string{"Paris"}, false},
		{"bare code fence", "```\n{\"answers\": [\"Paris\"]}\n```", []string{"Paris"}, false},
		{"surrounding whitespace", "  {\"answers\": [\"Paris\"]}\n", []string{"Paris"}, false},
		{"prose instead of json", "The answer is Paris.", nil, true},
		{"truncated json", `{"answers": ["Paris"`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAnswer(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAnswer(%q): %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got.Strings, tt.want) {
				t.Errorf("ParseAnswer(%q) = %v, want %v", tt.raw, got.Strings, tt.want)
			}
		})
	}
}

func TestRenderAnswerPrompt(t *testing.T) {
	prompt, err := renderAnswerPrompt("When was it founded?", "It was founded in 1948.")
	if err != nil {
		t.Fatalf("renderAnswerPrompt: %v", err)
	}
	for _, want := range []string{"When was it founded?", "It was founded in 1948.", `{"answers": []}`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestClaudeAsk(t *testing.T) {
	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")

		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "claude-test" {
			t.Errorf("request model = %q, want claude-test", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: `{"answers": ["Paris"]}`}},
			Usage:   claudeUsage{InputTokens: 120, OutputTokens: 8},
		})
	}))
	defer server.Close()

	c := NewClaude(types.OracleConfig{
		APIKey:  "test-key",
		Model:   "claude-test",
		BaseURL: server.URL,
	})

	answer, cost, err := c.Ask(context.Background(), "What is the capital?", "The capital is Paris.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reflect.DeepEqual(answer.Strings, []string{"Paris"}) {
		t.Errorf("answer = %v, want [Paris]", answer.Strings)
	}
	if cost.InputTokens != 120 || cost.OutputTokens != 8 {
		t.Errorf("cost = %+v, want 120/8", cost)
	}
	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q, want test-key", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
}

func TestClaudeEmptyContextSkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClaude(types.OracleConfig{BaseURL: server.URL})

	for _, contextText := range []string{"", "   ", "\n\t"} {
		answer, cost, err := c.Ask(context.Background(), "q", contextText)
		if err != nil {
			t.Fatalf("Ask(%q): %v", contextText, err)
		}
		if !answer.IsNoAnswer() {
			t.Errorf("Ask(%q) = %v, want no-answer", contextText, answer.Strings)
		}
		if cost != (Cost{}) {
			t.Errorf("Ask(%q) cost = %+v, want zero", contextText, cost)
		}
	}
	if calls != 0 {
		t.Errorf("backend received %d calls for empty contexts", calls)
	}
}

func TestClaudeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClaude(types.OracleConfig{BaseURL: server.URL})
	_, _, err := c.Ask(context.Background(), "q", "some context")
	if err == nil {
		t.Fatal("Ask succeeded against a failing backend")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error %q does not carry the status code", err)
	}
}

func TestClaudeMalformedModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: "I cannot answer that."}},
		})
	}))
	defer server.Close()

	c := NewClaude(types.OracleConfig{BaseURL: server.URL})
	_, _, err := c.Ask(context.Background(), "q", "some context")
	if err == nil {
		t.Fatal("Ask accepted a non-JSON model response")
	}
}

func TestOpenAIAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"answers": ["1948"]}`}},
			},
			"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 6},
		})
	}))
	defer server.Close()

	o := NewOpenAI(types.OracleConfig{
		APIKey:  "test-key",
		Model:   "gpt-test",
		BaseURL: server.URL + "/v1",
	})

	answer, cost, err := o.Ask(context.Background(), "When?", "It happened in 1948.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !reflect.DeepEqual(answer.Strings, []string{"1948"}) {
		t.Errorf("answer = %v, want [1948]", answer.Strings)
	}
	if cost.InputTokens != 50 || cost.OutputTokens != 6 {
		t.Errorf("cost = %+v, want 50/6", cost)
	}
}

func TestClaudeCompleteSendsPromptVerbatim(t *testing.T) {
	var gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotContent = req.Messages[0].Content
		}
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: "raw reply"}},
		})
	}))
	defer server.Close()

	c := NewClaude(types.OracleConfig{BaseURL: server.URL})

	raw, _, err := c.Complete(context.Background(), "Rate these passages 1-10.")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != "raw reply" {
		t.Errorf("reply = %q", raw)
	}
	// The prompt goes through untouched: no question answering
	// instructions wrapped around it.
	if gotContent != "Rate these passages 1-10." {
		t.Errorf("backend received %q, want the prompt verbatim", gotContent)
	}
}

func TestOpenAICompleteSendsPromptVerbatim(t *testing.T) {
	var gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotContent = req.Messages[0].Content
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "raw reply"}},
			},
		})
	}))
	defer server.Close()

	o := NewOpenAI(types.OracleConfig{BaseURL: server.URL + "/v1"})

	raw, _, err := o.Complete(context.Background(), "Are these answers equivalent?")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != "raw reply" {
		t.Errorf("reply = %q", raw)
	}
	if gotContent != "Are these answers equivalent?" {
		t.Errorf("backend received %q, want the prompt verbatim", gotContent)
	}
}

func TestOpenAIEmptyContextSkipsNetwork(t *testing.T) {
	o := NewOpenAI(types.OracleConfig{BaseURL: "http://127.0.0.1:1/v1"})

	answer, cost, err := o.Ask(context.Background(), "q", "  ")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !answer.IsNoAnswer() || cost != (Cost{}) {
		t.Errorf("got %v at cost %+v, want free no-answer", answer.Strings, cost)
	}
}

func TestNew(t *testing.T) {
	if o, err := New(types.OracleConfig{Provider: types.ProviderClaude}); err != nil {
		t.Errorf("New(claude): %v", err)
	} else if _, ok := o.(*Claude); !ok {
		t.Errorf("New(claude) = %T", o)
	}

	if o, err := New(types.OracleConfig{Provider: types.ProviderOpenAI}); err != nil {
		t.Errorf("New(openai): %v", err)
	} else if _, ok := o.(*OpenAI); !ok {
		t.Errorf("New(openai) = %T", o)
	}

	if _, err := New(types.OracleConfig{Provider: "gemini"}); err == nil {
		t.Error("New accepted an unknown provider")
	}
}

func TestCostAdd(t *testing.T) {
	c := Cost{InputTokens: 10, OutputTokens: 2}
	c.Add(Cost{InputTokens: 5, OutputTokens: 3})
	if c.InputTokens != 15 || c.OutputTokens != 5 {
		t.Errorf("after Add: %+v", c)
	}
}
