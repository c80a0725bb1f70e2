// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package minimize implements the provenance minimization engine: an
// oracle-guided search for the smallest subsets of document units that
// still reproduce the original answer to a question.
package minimize

import (
	"sort"
	"strconv"
	"strings"
)

// Subset is an immutable sorted, duplicate-free set of unit indices.
// Two subsets are equal iff their canonical keys are equal; all engine
// bookkeeping (cache, parent and sibling maps) is keyed by Key, never
// by pointer identity.
type Subset struct {
	indices []int
}

// NewSubset builds a subset from indices, sorting and deduplicating a
// private copy.
func NewSubset(indices []int) Subset {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	deduped := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			deduped = append(deduped, v)
		}
	}
	return Subset{indices: deduped}
}

// Len returns the number of indices.
func (s Subset) Len() int {
	return len(s.indices)
}

// IsEmpty reports whether the subset has no indices.
func (s Subset) IsEmpty() bool {
	return len(s.indices) == 0
}

// Indices returns a copy of the indices in ascending order.
func (s Subset) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Key is the canonical cache key: the sorted indices joined by commas.
// The empty subset's key is the empty string.
func (s Subset) Key() string {
	if len(s.indices) == 0 {
		return ""
	}
	parts := make([]string, len(s.indices))
	for i, v := range s.indices {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Without returns the subset with the element at position pos removed.
func (s Subset) Without(pos int) Subset {
	out := make([]int, 0, len(s.indices)-1)
	out = append(out, s.indices[:pos]...)
	out = append(out, s.indices[pos+1:]...)
	return Subset{indices: out}
}

// WithoutRange returns the subset with n elements starting at position
// start removed.
func (s Subset) WithoutRange(start, n int) Subset {
	out := make([]int, 0, len(s.indices)-n)
	out = append(out, s.indices[:start]...)
	out = append(out, s.indices[start+n:]...)
	return Subset{indices: out}
}

// Split bisects the subset at its midpoint, preserving document order.
// The context for each half is rebuilt by concatenating unit text in
// index order, so contiguity of positions matters more than balance.
func (s Subset) Split() (left, right Subset) {
	mid := len(s.indices) / 2
	return Subset{indices: s.indices[:mid]}, Subset{indices: s.indices[mid:]}
}
