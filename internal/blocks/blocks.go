// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blocks biases the minimization search order with coarse
// relevance scores over contiguous unit blocks. Scoring influences only
// which half of a split is explored first: a wrong score costs extra
// oracle calls, never a wrong result.
package blocks

import (
	"context"
	"fmt"

	"github.com/pdiddy/evidence-engine/internal/units"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// DefaultMaxBlocks caps how many contiguous blocks are scored.
const DefaultMaxBlocks = 20

// Scorer assigns a relevance score (1-10) to each block of document
// text with respect to a question and its answer.
type Scorer interface {
	ScoreBlocks(ctx context.Context, blocks []string, question string, answer types.Answer) ([]float64, error)
}

// Decider chooses which half of a subset split to explore first, based
// on per-block relevance scores.
type Decider struct {
	blockOf []int // unit index -> block number
	scores  []float64
}

// NewDecider partitions the store into at most maxBlocks contiguous
// blocks, scores them, and returns a decider over the scores. When
// maxBlocks is 0 the default (20) is used.
func NewDecider(ctx context.Context, scorer Scorer, store *units.Store, question string, answer types.Answer, maxBlocks int) (*Decider, error) {
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}

	indexBlocks := store.Blocks(maxBlocks)
	if len(indexBlocks) == 0 {
		return nil, fmt.Errorf("no units to score")
	}

	texts := make([]string, len(indexBlocks))
	blockOf := make([]int, store.Len())
	for b, indices := range indexBlocks {
		texts[b] = store.Context(indices)
		for _, idx := range indices {
			blockOf[idx] = b
		}
	}

	scores, err := scorer.ScoreBlocks(ctx, texts, question, answer)
	if err != nil {
		return nil, fmt.Errorf("scoring blocks: %w", err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("scorer returned %d scores for %d blocks", len(scores), len(texts))
	}

	return &Decider{blockOf: blockOf, scores: scores}, nil
}

// PreferRight reports whether the right half of a split should be
// explored before the left. Each half is scored as the mean of the
// blocks it overlaps; the higher mean wins, ties go left.
func (d *Decider) PreferRight(left, right []int) bool {
	return d.halfScore(right) > d.halfScore(left)
}

// halfScore averages the scores of the blocks overlapped by indices.
func (d *Decider) halfScore(indices []int) float64 {
	seen := make(map[int]bool)
	var sum float64
	var count int
	for _, idx := range indices {
		if idx < 0 || idx >= len(d.blockOf) {
			continue
		}
		b := d.blockOf[idx]
		if seen[b] {
			continue
		}
		seen[b] = true
		sum += d.scores[b]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
