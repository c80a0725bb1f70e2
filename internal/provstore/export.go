// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a provenance result with its run context for export.
type ExportEntry struct {
	RunID         string    `json:"run_id" yaml:"run_id"`
	Question      string    `json:"question" yaml:"question"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	ResultID      int       `json:"result_id" yaml:"result_id"`
	ResultIndices []int     `json:"result_indices" yaml:"result_indices"`
	Text          string    `json:"text" yaml:"text"`
	InputTokens   int       `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens  int       `json:"output_tokens" yaml:"output_tokens"`
}

const exportLimit = 100000

// ExportYAML writes matching results to results/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.resultsDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching results to results/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.resultsDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			RunID:         r.RunID,
			Question:      r.RunQuestion,
			CreatedAt:     r.RunCreatedAt,
			ResultID:      r.ResultID,
			ResultIndices: r.ResultIndices,
			Text:          r.Text,
			InputTokens:   r.InputTokens,
			OutputTokens:  r.OutputTokens,
		}
	}
	return entries, nil
}
