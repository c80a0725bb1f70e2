// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package minimize

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/evidence-engine/internal/equivalence"
	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/internal/units"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	defaultTopK       = 5
	defaultStopLength = 5
)

// Emitter receives each discovered minimal provenance as soon as it is
// found, in discovery order, so long searches can be consumed
// progressively. Emission errors abort the run.
type Emitter interface {
	Emit(result types.ProvenanceResult) error
}

// Decider chooses which half of a split to explore first. Ordering
// only: a bad choice costs oracle calls, never correctness.
type Decider interface {
	PreferRight(left, right []int) bool
}

// Deps wires the minimizer's collaborators. Units, Oracle, and Checker
// are required; Decider, Emitter, and Progress are optional.
type Deps struct {
	Units   *units.Store
	Oracle  oracle.Oracle
	Checker equivalence.Checker
	Decider Decider
	Emitter Emitter

	// NewDecider builds a Decider once the original answer is known,
	// e.g. by scoring blocks against it. Ignored when Decider is set;
	// a construction failure falls back to left-first ordering.
	NewDecider func(ctx context.Context, question string, original types.Answer) (Decider, error)

	// OnOriginal runs once per Run, after the original full-document
	// answer is established and before the search starts. Persistence
	// hooks attach here so a run record exists before results stream to
	// the Emitter. An error aborts the run.
	OnOriginal func(ctx context.Context, original types.Answer) error

	// Progress receives human-readable search progress lines.
	Progress io.Writer
}

// Summary holds the durable output of one minimization run.
type Summary struct {
	// Question is the question the run explained.
	Question string `json:"question" yaml:"question"`

	// Original is the full-document answer the run matched against.
	Original types.Answer `json:"original" yaml:"original"`

	// Results lists the discovered minimal provenances in discovery order.
	Results []types.ProvenanceResult `json:"results" yaml:"results"`

	// OracleCalls counts oracle invocations, including short-circuited
	// empty-context probes.
	OracleCalls int `json:"oracle_calls" yaml:"oracle_calls"`

	// Cost is the run's total token spend.
	Cost oracle.Cost `json:"cost" yaml:"cost"`

	// Elapsed is the total run duration.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Minimizer is the top-K divide-and-conquer orchestrator. It owns the
// per-run cache and the parent/sibling bookkeeping; a Minimizer runs
// one search at a time and is not safe for concurrent use.
type Minimizer struct {
	deps Deps
	cfg  types.EngineConfig

	// Per-run state, reset by Run.
	question  string
	original  types.Answer
	decider   Decider
	cache     *Cache
	parentOf  map[string]string
	siblingOf map[string]string
	byKey     map[string]Subset
	emitted   map[string]bool
	results   []types.ProvenanceResult
	calls     int
	cost      oracle.Cost
}

// New builds a minimizer, applying config defaults.
func New(deps Deps, cfg types.EngineConfig) (*Minimizer, error) {
	if deps.Units == nil || deps.Oracle == nil || deps.Checker == nil {
		return nil, fmt.Errorf("units, oracle, and checker are required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.StopLength <= 0 {
		cfg.StopLength = defaultStopLength
	}
	if deps.Progress == nil {
		deps.Progress = io.Discard
	}
	return &Minimizer{deps: deps, cfg: cfg}, nil
}

// Run executes one minimization: it obtains the original full-document
// answer, then searches for up to TopK distinct minimal sufficient
// subsets. A no-answer on the full document ends the run immediately
// with zero results. Oracle failures abort the run.
func (m *Minimizer) Run(ctx context.Context, question string) (*Summary, error) {
	start := time.Now()

	m.question = question
	m.cache = NewCache()
	m.parentOf = make(map[string]string)
	m.siblingOf = make(map[string]string)
	m.byKey = make(map[string]Subset)
	m.emitted = make(map[string]bool)
	m.results = nil
	m.calls = 0
	m.cost = oracle.Cost{}

	full := NewSubset(m.deps.Units.FullRange())

	original, err := m.ask(ctx, full)
	if err != nil {
		return nil, fmt.Errorf("answering from full document: %w", err)
	}
	if original.IsNoAnswer() {
		fmt.Fprintln(m.deps.Progress, "no answer from full document; nothing to explain")
		return m.summary(start), nil
	}
	m.original = original

	if m.cfg.VerifyRoot {
		if err := m.verifyRoot(ctx, full); err != nil {
			return nil, err
		}
	}

	if m.deps.OnOriginal != nil {
		if err := m.deps.OnOriginal(ctx, original); err != nil {
			return nil, fmt.Errorf("starting run: %w", err)
		}
	}

	m.decider = m.deps.Decider
	if m.decider == nil && m.deps.NewDecider != nil {
		decider, err := m.deps.NewDecider(ctx, question, original)
		if err != nil {
			fmt.Fprintf(m.deps.Progress, "block scoring unavailable (%v); exploring left-first\n", err)
		} else {
			m.decider = decider
		}
	}

	// The full document reproduces the original answer by construction;
	// this is the run's trust assumption, never independently verified
	// unless VerifyRoot is set.
	m.cache.Store(full.Key(), Sufficient)
	m.byKey[full.Key()] = full

	if err := m.search(ctx, full, start); err != nil {
		return nil, err
	}
	return m.summary(start), nil
}

// search runs the explicit-stack traversal. No recursion: stack depth
// and memory stay under the caller's control, and the traversal order
// is exactly the push order.
func (m *Minimizer) search(ctx context.Context, full Subset, start time.Time) error {
	stack := []Subset{full}

	for len(stack) > 0 && len(m.results) < m.cfg.TopK {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		state, err := m.sufficiency(ctx, s)
		if err != nil {
			return err
		}

		if state == Insufficient {
			if err := m.maybeRescue(ctx, s, start); err != nil {
				return err
			}
			continue
		}

		if s.Len() <= m.cfg.StopLength {
			minimal, err := m.sequentialReduce(ctx, s)
			if err != nil {
				return err
			}
			if err := m.emit(s, minimal, start); err != nil {
				return err
			}
			continue
		}

		left, right := s.Split()
		m.byKey[left.Key()] = left
		m.byKey[right.Key()] = right
		m.parentOf[left.Key()] = s.Key()
		m.parentOf[right.Key()] = s.Key()
		m.siblingOf[left.Key()] = right.Key()
		m.siblingOf[right.Key()] = left.Key()

		// The preferred half is pushed last so it is explored first.
		preferred, other := left, right
		if m.decider != nil && m.decider.PreferRight(left.Indices(), right.Indices()) {
			preferred, other = right, left
		}
		stack = append(stack, other, preferred)
	}
	return nil
}

// maybeRescue handles the one path that can save a split where neither
// half alone carries the answer: when s and its sibling are both
// settled insufficient under a sufficient parent, the parent is
// minimized directly with the exponential reducer.
func (m *Minimizer) maybeRescue(ctx context.Context, s Subset, start time.Time) error {
	sibKey, ok := m.siblingOf[s.Key()]
	if !ok {
		return nil
	}
	if sibState, found := m.cache.Lookup(sibKey); !found || sibState != Insufficient {
		return nil
	}

	parentKey := m.parentOf[s.Key()]
	if pState, found := m.cache.Lookup(parentKey); !found || pState != Sufficient {
		return nil
	}

	parent := m.byKey[parentKey]
	fmt.Fprintf(m.deps.Progress, "rescue: support straddles split of %d units\n", parent.Len())

	minimal, err := m.exponentialReduce(ctx, parent)
	if err != nil {
		return err
	}
	return m.emit(parent, minimal, start)
}

// verifyRoot asks the oracle a second time over the full document and
// requires the fresh answer to match the original. Guards against a
// non-deterministic oracle making results unreproducible.
func (m *Minimizer) verifyRoot(ctx context.Context, full Subset) error {
	fresh, err := m.ask(ctx, full)
	if err != nil {
		return fmt.Errorf("re-verifying full document: %w", err)
	}
	eq, err := m.deps.Checker.Equivalent(ctx, fresh, m.original, m.question)
	if err != nil {
		return fmt.Errorf("re-verifying full document: %w", err)
	}
	if !eq {
		return fmt.Errorf("oracle did not reproduce the original answer for the full document")
	}
	return nil
}

// sufficiency returns the memoized verdict for s, consulting the oracle
// and the equivalence checker on a cache miss. This is the single most
// important performance device in the engine: no subset is ever
// evaluated twice in one run.
func (m *Minimizer) sufficiency(ctx context.Context, s Subset) (TriState, error) {
	if state, found := m.cache.Lookup(s.Key()); found {
		return state, nil
	}

	answer, err := m.ask(ctx, s)
	if err != nil {
		return Unknown, err
	}

	eq, err := m.deps.Checker.Equivalent(ctx, answer, m.original, m.question)
	if err != nil {
		return Unknown, err
	}

	state := Insufficient
	if eq {
		state = Sufficient
	}
	m.cache.Store(s.Key(), state)
	return state, nil
}

// ask issues one oracle call over the subset's reconstructed context
// and accounts for its cost.
func (m *Minimizer) ask(ctx context.Context, s Subset) (types.Answer, error) {
	answer, cost, err := m.deps.Oracle.Ask(ctx, m.question, m.deps.Units.Context(s.indices))
	m.calls++
	m.cost.Add(cost)
	if err != nil {
		return types.Answer{}, err
	}
	return answer, nil
}

// emit records one minimal provenance and forwards it to the emitter.
// A minimal subset already reported this run is silently dropped, so
// results stay distinct.
func (m *Minimizer) emit(input, minimal Subset, start time.Time) error {
	if m.emitted[minimal.Key()] {
		return nil
	}
	m.emitted[minimal.Key()] = true

	result := types.ProvenanceResult{
		ID:            len(m.results) + 1,
		InputIndices:  input.Indices(),
		ResultIndices: minimal.Indices(),
		Text:          m.deps.Units.Context(minimal.Indices()),
		InputTokens:   m.cost.InputTokens,
		OutputTokens:  m.cost.OutputTokens,
		Elapsed:       time.Since(start),
	}
	m.results = append(m.results, result)

	fmt.Fprintf(m.deps.Progress, "provenance %d: units %v (%d oracle calls so far)\n",
		result.ID, result.ResultIndices, m.calls)

	if m.deps.Emitter != nil {
		if err := m.deps.Emitter.Emit(result); err != nil {
			return fmt.Errorf("emitting result %d: %w", result.ID, err)
		}
	}
	return nil
}

func (m *Minimizer) summary(start time.Time) *Summary {
	return &Summary{
		Question:    m.question,
		Original:    m.original,
		Results:     m.results,
		OracleCalls: m.calls,
		Cost:        m.cost,
		Elapsed:     time.Since(start),
	}
}
