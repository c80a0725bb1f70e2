// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QueryOptions holds parameters for provenance queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over evidence text.
	Query string

	// RunID filters by run.
	RunID string

	// Question filters by substring match on the run's question.
	Question string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RunID == "" && q.Question == ""
}

// QueryResult is a stored provenance result joined with its run.
type QueryResult struct {
	RunID         string    `json:"run_id" yaml:"run_id"`
	RunQuestion   string    `json:"question" yaml:"question"`
	RunCreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	ResultID      int       `json:"result_id" yaml:"result_id"`
	ResultIndices []int     `json:"result_indices" yaml:"result_indices"`
	Text          string    `json:"text" yaml:"text"`
	InputTokens   int       `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens  int       `json:"output_tokens" yaml:"output_tokens"`
}

// Retrieve queries stored results with optional full-text search and
// structured filters. Full-text queries rank by FTS relevance;
// structured-only queries sort newest run first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.run_id, runs.question, runs.created_at,
				r.result_id, r.result_indices, r.content,
				r.input_tokens, r.output_tokens
			FROM results_fts
			JOIN results r ON r.rowid = results_fts.rowid
			JOIN runs ON r.run_id = runs.id
			WHERE results_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.run_id, runs.question, runs.created_at,
				r.result_id, r.result_indices, r.content,
				r.input_tokens, r.output_tokens
			FROM results r
			JOIN runs ON r.run_id = runs.id
			WHERE 1=1`)
	}

	if opts.RunID != "" {
		qb.WriteString(` AND r.run_id = ?`)
		args = append(args, opts.RunID)
	}

	if opts.Question != "" {
		qb.WriteString(` AND runs.question LIKE ?`)
		args = append(args, "%"+opts.Question+"%")
	}

	if useFTS {
		qb.WriteString(` ORDER BY results_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY runs.created_at DESC, r.result_id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying provenance store: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr          QueryResult
			createdAt   string
			indicesJSON sql.NullString
		)

		if err := rows.Scan(
			&qr.RunID, &qr.RunQuestion, &createdAt,
			&qr.ResultID, &indicesJSON, &qr.Text,
			&qr.InputTokens, &qr.OutputTokens,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			qr.RunCreatedAt = t
		}
		if indicesJSON.Valid {
			json.Unmarshal([]byte(indicesJSON.String), &qr.ResultIndices)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, unit_count, answer, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			answerJSON sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&run.ID, &run.Question, &run.UnitCount, &answerJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if answerJSON.Valid {
			json.Unmarshal([]byte(answerJSON.String), &run.Answer)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			run.CreatedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
