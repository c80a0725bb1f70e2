// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package units

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple sentences",
			in:   "The sky is blue. The grass is green.",
			want: []string{"The sky is blue.", "The grass is green."},
		},
		{
			name: "question and exclamation",
			in:   "Is it blue? It is! Definitely.",
			want: []string{"Is it blue?", "It is!", "Definitely."},
		},
		{
			name: "decimal numbers stay intact",
			in:   "The value is 3.14 exactly. Next sentence.",
			want: []string{"The value is 3.14 exactly.", "Next sentence."},
		},
		{
			name: "abbreviations do not split",
			in:   "Some models, e.g. the latest ones, perform well. See Fig. 3 for details.",
			want: []string{"Some models, e.g. the latest ones, perform well.", "See Fig. 3 for details."},
		},
		{
			name: "closing quote after terminator",
			in:   `She said "stop." He did not.`,
			want: []string{`She said "stop."`, "He did not."},
		},
		{
			name: "trailing text without terminator",
			in:   "Complete sentence. Dangling fragment",
			want: []string{"Complete sentence.", "Dangling fragment"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSentencesMarkdown(t *testing.T) {
	in := "# Heading\n\nFirst paragraph sentence. Second one\nwrapped across lines.\n\n```go\ncode := true\n```\n\n- A list item sentence.\n"

	got := SplitSentences(in)
	want := []string{
		"First paragraph sentence.",
		"Second one wrapped across lines.",
		"A list item sentence.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences() = %q, want %q", got, want)
	}
}

func TestSplitSentencesStripsBoldMarkers(t *testing.T) {
	got := SplitSentences("This is **important** text.")
	want := []string{"This is important text."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences() = %q, want %q", got, want)
	}
}
