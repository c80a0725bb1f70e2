// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provstore persists minimization runs and their provenance
// results in SQLite and serves full-text queries over the evidence.
package provstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "evidence.db"
)

// Store manages the provenance SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// Run describes one minimization run. Results reference their run by ID.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Question  string    `json:"question" yaml:"question"`
	Document  string    `json:"document" yaml:"document"`
	UnitCount int       `json:"unit_count" yaml:"unit_count"`
	Answer    []string  `json:"answer" yaml:"answer"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewRun returns a Run with a fresh UUID and the current time.
func NewRun(question, document string, unitCount int, answer types.Answer) Run {
	return Run{
		ID:        uuid.NewString(),
		Question:  question,
		Document:  document,
		UnitCount: unitCount,
		Answer:    answer.Strings,
		CreatedAt: time.Now().UTC(),
	}
}

// Open opens or creates the provenance database at
// resultsDir/index/evidence.db, creating the schema if needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, resultsDir: cfg.ResultsDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			document TEXT,
			unit_count INTEGER,
			answer TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			result_id INTEGER NOT NULL,
			input_indices TEXT,
			result_indices TEXT NOT NULL,
			content TEXT NOT NULL,
			input_tokens INTEGER,
			output_tokens INTEGER,
			elapsed_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='results_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE results_fts USING fts5(content, content=results, content_rowid=rowid)`,
			`CREATE TRIGGER results_ai AFTER INSERT ON results BEGIN
				INSERT INTO results_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER results_ad AFTER DELETE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun records a run before its search starts, so results can stream
// in against it.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	answerJSON, err := json.Marshal(run.Answer)
	if err != nil {
		return fmt.Errorf("marshaling answer: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, question, document, unit_count, answer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Question, run.Document, run.UnitCount,
		string(answerJSON), run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// AppendResult persists one provenance result for a run.
func (s *Store) AppendResult(ctx context.Context, runID string, result types.ProvenanceResult) error {
	inputJSON, err := json.Marshal(result.InputIndices)
	if err != nil {
		return fmt.Errorf("marshaling input indices: %w", err)
	}
	resultJSON, err := json.Marshal(result.ResultIndices)
	if err != nil {
		return fmt.Errorf("marshaling result indices: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, result_id, input_indices, result_indices,
			content, input_tokens, output_tokens, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.ID, string(inputJSON), string(resultJSON),
		result.Text, result.InputTokens, result.OutputTokens,
		result.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

// Emitter binds the store to one run as a streaming result emitter.
func (s *Store) Emitter(ctx context.Context, runID string) report.Emitter {
	return &runEmitter{store: s, ctx: ctx, runID: runID}
}

type runEmitter struct {
	store *Store
	ctx   context.Context
	runID string
}

func (e *runEmitter) Emit(result types.ProvenanceResult) error {
	return e.store.AppendResult(e.ctx, e.runID, result)
}
