// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine
// pipeline: document units, oracle answers, and provenance results.
package types

import (
	"sort"
	"time"
)

// Unit is one document sentence, addressed by its position in the
// original document. Units are immutable once the document is loaded;
// every other component refers to units only by index.
type Unit struct {
	// Index is the zero-based position of the unit in the document.
	Index int `json:"index" yaml:"index"`

	// Text is the unit's sentence text.
	Text string `json:"text" yaml:"text"`
}

// Answer is the oracle's response to a question: an ordered list of
// answer strings. Answers are compared through an equivalence checker,
// never by structural equality; the order of Strings is not significant.
//
// The zero value (no strings) is the "no answer" sentinel returned when
// the oracle cannot answer from the given context.
type Answer struct {
	Strings []string `json:"answers" yaml:"answers"`
}

// NoAnswer returns the sentinel answer used when the oracle declines to
// answer or when the context is empty.
func NoAnswer() Answer {
	return Answer{}
}

// IsNoAnswer reports whether a is the no-answer sentinel.
func (a Answer) IsNoAnswer() bool {
	return len(a.Strings) == 0
}

// Sorted returns the answer strings in lexicographic order. Used by
// equivalence checks, which treat answers as multisets.
func (a Answer) Sorted() []string {
	out := make([]string, len(a.Strings))
	copy(out, a.Strings)
	sort.Strings(out)
	return out
}

// ProvenanceResult is one minimal sufficient subset of document units,
// reported as an explanation of the original answer. Results are
// immutable once created and are appended to the run's output in
// discovery order.
type ProvenanceResult struct {
	// ID numbers the result within its run, starting at 1.
	ID int `json:"id" yaml:"id"`

	// InputIndices is the subset the search handed to the reducer.
	InputIndices []int `json:"input_indices" yaml:"input_indices"`

	// ResultIndices is the minimal sufficient subset, sorted ascending.
	ResultIndices []int `json:"result_indices" yaml:"result_indices"`

	// Text is the evidence text: the result units concatenated in
	// document order.
	Text string `json:"text" yaml:"text"`

	// InputTokens and OutputTokens are the cumulative oracle token
	// counts for the run at the moment the result was found.
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	// Elapsed is the time from run start to result discovery.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}
