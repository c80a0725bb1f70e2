// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report delivers provenance results to their consumers as they
// are discovered. The engine never knows the storage format; emitters
// do.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// Emitter receives each result once, in discovery order.
type Emitter interface {
	Emit(result types.ProvenanceResult) error
}

// Writer renders results as human-readable lines.
type Writer struct {
	W io.Writer
}

// Emit writes one result as an indices line followed by the evidence text.
func (e *Writer) Emit(result types.ProvenanceResult) error {
	_, err := fmt.Fprintf(e.W, "result %d: units %v (%d in / %d out tokens, %s)\n  %s\n",
		result.ID, result.ResultIndices,
		result.InputTokens, result.OutputTokens, result.Elapsed.Round(1e7),
		result.Text)
	return err
}

// JSONL appends results to a file as one JSON object per line.
type JSONL struct {
	f   *os.File
	enc *json.Encoder
}

// NewJSONL creates or truncates path and returns an emitter over it.
func NewJSONL(path string) (*JSONL, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating result file: %w", err)
	}
	return &JSONL{f: f, enc: json.NewEncoder(f)}, nil
}

// Emit encodes one result as a JSON line.
func (e *JSONL) Emit(result types.ProvenanceResult) error {
	if err := e.enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (e *JSONL) Close() error {
	return e.f.Close()
}

// Multi fans one result out to several emitters in order.
type Multi []Emitter

// Emit forwards to each emitter, stopping at the first error.
func (m Multi) Emit(result types.ProvenanceResult) error {
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(result); err != nil {
			return err
		}
	}
	return nil
}
