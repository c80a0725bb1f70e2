// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package units

import (
	"reflect"
	"testing"
)

func TestNewStoreDropsBlankSentences(t *testing.T) {
	s := NewStore([]string{"First.", "  ", "", "Second."})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	u, err := s.Unit(1)
	if err != nil {
		t.Fatalf("Unit(1): %v", err)
	}
	if u.Text != "Second." || u.Index != 1 {
		t.Errorf("Unit(1) = %+v", u)
	}
}

func TestUnitOutOfRange(t *testing.T) {
	s := NewStore([]string{"Only."})
	if _, err := s.Unit(1); err == nil {
		t.Error("Unit(1) on a single-unit store should fail")
	}
	if _, err := s.Unit(-1); err == nil {
		t.Error("Unit(-1) should fail")
	}
}

func TestContextPreservesDocumentOrder(t *testing.T) {
	s := NewStore([]string{"Alpha.", "Beta.", "Gamma."})

	// Input order must not matter; document order must.
	got := s.Context([]int{2, 0})
	want := "Alpha. Gamma."
	if got != want {
		t.Errorf("Context([2,0]) = %q, want %q", got, want)
	}
}

func TestContextIgnoresOutOfRangeIndices(t *testing.T) {
	s := NewStore([]string{"Alpha.", "Beta."})
	if got := s.Context([]int{0, 7}); got != "Alpha." {
		t.Errorf("Context([0,7]) = %q, want %q", got, "Alpha.")
	}
}

func TestContextEmpty(t *testing.T) {
	s := NewStore([]string{"Alpha."})
	if got := s.Context(nil); got != "" {
		t.Errorf("Context(nil) = %q, want empty", got)
	}
}

func TestFullRange(t *testing.T) {
	s := NewStore([]string{"A.", "B.", "C."})
	if got := s.FullRange(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("FullRange() = %v", got)
	}
}

func TestBlocksPartition(t *testing.T) {
	sentences := make([]string, 10)
	for i := range sentences {
		sentences[i] = "S."
	}
	s := NewStore(sentences)

	blocks := s.Blocks(3)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}

	// Every index appears exactly once, in order.
	var flat []int
	for _, b := range blocks {
		flat = append(flat, b...)
	}
	if !reflect.DeepEqual(flat, s.FullRange()) {
		t.Errorf("blocks do not partition the range: %v", flat)
	}
}

func TestBlocksFewerUnitsThanBlocks(t *testing.T) {
	s := NewStore([]string{"A.", "B."})
	blocks := s.Blocks(20)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
}

func TestBlocksEmptyStore(t *testing.T) {
	s := NewStore(nil)
	if blocks := s.Blocks(5); blocks != nil {
		t.Errorf("Blocks on empty store = %v, want nil", blocks)
	}
}
