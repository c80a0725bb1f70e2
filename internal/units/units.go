// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package units splits a document into sentence units and serves them
// by index. The store is immutable for the lifetime of a minimization
// run; contexts handed to the oracle are rebuilt by concatenating unit
// text in document order.
package units

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Store is an immutable ordered sequence of document units.
type Store struct {
	units []types.Unit
}

// NewStore builds a store from pre-split sentences. Empty and
// whitespace-only sentences are dropped; surviving sentences are
// indexed in input order.
func NewStore(sentences []string) *Store {
	units := make([]types.Unit, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		units = append(units, types.Unit{Index: len(units), Text: s})
	}
	return &Store{units: units}
}

// Load tokenizes a document into sentences and returns a store over them.
func Load(document string) *Store {
	return NewStore(SplitSentences(document))
}

// Len returns the number of units.
func (s *Store) Len() int {
	return len(s.units)
}

// Unit returns the unit at index i.
func (s *Store) Unit(i int) (types.Unit, error) {
	if i < 0 || i >= len(s.units) {
		return types.Unit{}, fmt.Errorf("unit index %d out of range [0,%d)", i, len(s.units))
	}
	return s.units[i], nil
}

// Units returns a copy of all units in document order.
func (s *Store) Units() []types.Unit {
	out := make([]types.Unit, len(s.units))
	copy(out, s.units)
	return out
}

// FullRange returns every unit index in ascending order.
func (s *Store) FullRange() []int {
	out := make([]int, len(s.units))
	for i := range out {
		out[i] = i
	}
	return out
}

// Context rebuilds oracle context text from a set of unit indices.
// Units are concatenated in document order regardless of input order;
// out-of-range indices are ignored.
func (s *Store) Context(indices []int) string {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	var b strings.Builder
	for _, idx := range sorted {
		if idx < 0 || idx >= len(s.units) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.units[idx].Text)
	}
	return b.String()
}

// Blocks partitions the full index range into at most max contiguous
// blocks of near-equal size, in document order. Returns nil when the
// store is empty or max is not positive.
func (s *Store) Blocks(max int) [][]int {
	n := len(s.units)
	if n == 0 || max <= 0 {
		return nil
	}
	count := max
	if n < count {
		count = n
	}

	blocks := make([][]int, 0, count)
	for b := 0; b < count; b++ {
		start := b * n / count
		end := (b + 1) * n / count
		block := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			block = append(block, i)
		}
		blocks = append(blocks, block)
	}
	return blocks
}
