// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

func sampleResult(id int) types.ProvenanceResult {
	return types.ProvenanceResult{
		ID:            id,
		InputIndices:  []int{0, 1, 2, 3},
		ResultIndices: []int{1, 3},
		Text:          "The capital moved in 1948. It has not moved since.",
		InputTokens:   120,
		OutputTokens:  9,
		Elapsed:       1500 * time.Millisecond,
	}
}

func TestWriterEmit(t *testing.T) {
	var buf bytes.Buffer
	e := &Writer{W: &buf}

	if err := e.Emit(sampleResult(1)); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"result 1", "[1 3]", "120 in", "9 out", "The capital moved in 1948."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	e, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("NewJSONL: %v", err)
	}

	want := []types.ProvenanceResult{sampleResult(1), sampleResult(2)}
	for _, r := range want {
		if err := e.Emit(r); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening result file: %v", err)
	}
	defer f.Close()

	var got []types.ProvenanceResult
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r types.ProvenanceResult
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(got)+1, err)
		}
		got = append(got, r)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

// failEmitter fails on every result.
type failEmitter struct{ calls int }

func (e *failEmitter) Emit(types.ProvenanceResult) error {
	e.calls++
	return fmt.Errorf("sink unavailable")
}

// countEmitter records how many results it received.
type countEmitter struct{ calls int }

func (e *countEmitter) Emit(types.ProvenanceResult) error {
	e.calls++
	return nil
}

func TestMultiFansOut(t *testing.T) {
	a := &countEmitter{}
	b := &countEmitter{}
	m := Multi{a, nil, b}

	if err := m.Emit(sampleResult(1)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	bad := &failEmitter{}
	after := &countEmitter{}
	m := Multi{bad, after}

	if err := m.Emit(sampleResult(1)); err == nil {
		t.Fatal("Emit swallowed the sink error")
	}
	if after.calls != 0 {
		t.Errorf("emitter after the failure received %d results", after.calls)
	}
}
