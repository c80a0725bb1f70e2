// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package equivalence decides whether two oracle answers mean the same
// thing. Sufficiency of a subset is always measured against the
// original full-document answer through a Checker, never by structural
// equality.
package equivalence

import (
	"context"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Checker compares two answers in the context of the question that
// produced them. Implementations must be reflexive and symmetric for
// genuine answers; a no-answer sentinel in either argument is never
// equivalent to anything, including another sentinel.
type Checker interface {
	Equivalent(ctx context.Context, a, b types.Answer, question string) (bool, error)
}

const (
	defaultSimilarityThreshold = 0.9
	defaultMinSimilarityLength = 20
)

// Lexical compares answers as normalized string multisets. Long
// near-duplicate strings count as equal above a similarity threshold;
// answer lists of differing cardinality are conservatively unequal.
type Lexical struct {
	// SimilarityThreshold is the minimum normalized similarity for two
	// long strings to match.
	SimilarityThreshold float64

	// MinLength is the minimum string length before the similarity
	// tolerance applies.
	MinLength int
}

// NewLexical builds a lexical checker from engine config, applying
// defaults for unset thresholds.
func NewLexical(cfg types.EngineConfig) *Lexical {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultSimilarityThreshold
	}
	minLen := cfg.MinSimilarityLength
	if minLen <= 0 {
		minLen = defaultMinSimilarityLength
	}
	return &Lexical{SimilarityThreshold: threshold, MinLength: minLen}
}

// Equivalent compares a and b after normalization and sorting, pairing
// the i-th string of each. Order differences never matter; cardinality
// differences always do.
func (l *Lexical) Equivalent(_ context.Context, a, b types.Answer, _ string) (bool, error) {
	if a.IsNoAnswer() || b.IsNoAnswer() {
		return false, nil
	}
	if len(a.Strings) != len(b.Strings) {
		return false, nil
	}

	as := normalizeAll(a.Sorted())
	bs := normalizeAll(b.Sorted())

	for i := range as {
		if !l.stringsMatch(as[i], bs[i]) {
			return false, nil
		}
	}
	return true, nil
}

// stringsMatch reports whether two normalized strings are equal or
// similar enough to be the same answer phrased slightly differently.
func (l *Lexical) stringsMatch(x, y string) bool {
	if x == y {
		return true
	}
	if len(x) < l.MinLength || len(y) < l.MinLength {
		return false
	}
	return similarity(x, y) >= l.SimilarityThreshold
}

// normalize lowercases, trims surrounding punctuation, and collapses
// internal whitespace.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".,;:!?\"'")
	return strings.Join(strings.Fields(s), " ")
}

func normalizeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = normalize(s)
	}
	return out
}

// similarity is the normalized Levenshtein similarity in [0,1]:
// 1 - distance/maxLen.
func similarity(x, y string) float64 {
	if x == y {
		return 1
	}
	rx, ry := []rune(x), []rune(y)
	longest := len(rx)
	if len(ry) > longest {
		longest = len(ry)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(rx, ry))/float64(longest)
}

// levenshtein computes edit distance with a rolling single-row table.
func levenshtein(x, y []rune) int {
	if len(x) == 0 {
		return len(y)
	}
	if len(y) == 0 {
		return len(x)
	}

	row := make([]int, len(y)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(x); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(y); j++ {
			cost := 1
			if x[i-1] == y[j-1] {
				cost = 0
			}
			next := min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = next
		}
	}
	return row[len(y)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
