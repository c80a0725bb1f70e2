// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package minimize

import "context"

// sequentialReduce is the exact single-pass minimizer. For each element
// in input order it tests whether the set without that element is still
// sufficient; removable elements are dropped permanently. The output is
// 1-minimal at a cost of O(|S|) oracle calls, cache permitting. Used as
// the base case once a sufficient branch is at or below the stop length.
func (m *Minimizer) sequentialReduce(ctx context.Context, s Subset) (Subset, error) {
	cur := s
	for pos := 0; pos < cur.Len(); {
		state, err := m.sufficiency(ctx, cur.Without(pos))
		if err != nil {
			return Subset{}, err
		}
		if state == Sufficient {
			cur = cur.Without(pos)
		} else {
			pos++
		}
	}
	return cur, nil
}

// exponentialReduce is the doubling-skip-window minimizer. It removes a
// window of elements, doubling the window after each successful removal
// and shrinking back to one on failure; a failing single-element window
// marks that element unmovable and advances past it. Far fewer oracle
// calls than sequentialReduce on large sufficient sets. Used to rescue
// a split whose halves are both insufficient even though their shared
// parent is sufficient: the answer's support straddles the boundary and
// no further bisection can isolate it.
func (m *Minimizer) exponentialReduce(ctx context.Context, s Subset) (Subset, error) {
	cur := s
	start, window := 0, 1

	for start < cur.Len() {
		w := window
		if w > cur.Len()-start {
			w = cur.Len() - start
		}

		state, err := m.sufficiency(ctx, cur.WithoutRange(start, w))
		if err != nil {
			return Subset{}, err
		}

		switch {
		case state == Sufficient:
			// The window is gone for good; the next window starts at
			// the same position, now holding the following elements.
			cur = cur.WithoutRange(start, w)
			window *= 2
		case window == 1:
			start++
		default:
			window = 1
		}
	}
	return cur, nil
}
