package types

import "time"

// OracleProvider identifies the semantic oracle backend.
type OracleProvider string

const (
	ProviderClaude OracleProvider = "claude"
	ProviderOpenAI OracleProvider = "openai"
)

// EquivalenceMetric selects how two answers are compared.
type EquivalenceMetric string

const (
	// MetricLexical compares answers as normalized string multisets with
	// a similarity tolerance for near-duplicate strings.
	MetricLexical EquivalenceMetric = "lexical"

	// MetricSemantic asks the oracle backend for an equivalence judgment
	// and falls back on the lexical comparison when the judgment is
	// unusable.
	MetricSemantic EquivalenceMetric = "semantic"
)

// OracleConfig holds settings for the semantic oracle backend.
type OracleConfig struct {
	// Provider selects the backend: claude or openai.
	Provider OracleProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the backend API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend endpoint. For the openai provider
	// this allows OpenAI-compatible local servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Timeout is the per-request HTTP timeout (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of retry attempts on rate limiting
	// (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EngineConfig holds settings for the minimization engine.
type EngineConfig struct {
	// TopK is the maximum number of distinct minimal provenances to
	// collect before the search stops (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// StopLength is the subset size at or below which the search hands
	// a sufficient branch to the exact reducer (default 5).
	StopLength int `json:"stop_length" yaml:"stop_length"`

	// VerifyRoot re-asks the oracle for the full document and requires
	// the fresh answer to match the original before searching. Off by
	// default: the full document is trusted to reproduce the answer.
	VerifyRoot bool `json:"verify_root" yaml:"verify_root"`

	// Metric selects the answer-equivalence comparison (default lexical).
	Metric EquivalenceMetric `json:"equivalence_metric" yaml:"equivalence_metric"`

	// SimilarityThreshold is the minimum normalized string similarity
	// for two long answer strings to count as equivalent (default 0.9).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// MinSimilarityLength is the minimum string length before the
	// similarity tolerance applies; shorter strings must match exactly
	// (default 20).
	MinSimilarityLength int `json:"min_similarity_length" yaml:"min_similarity_length"`

	// MaxBlocks is the maximum number of contiguous unit blocks scored
	// for search ordering (default 20). Zero disables block scoring;
	// the search then explores left halves first.
	MaxBlocks int `json:"max_blocks" yaml:"max_blocks"`
}

// StoreConfig holds settings for the provenance result store.
type StoreConfig struct {
	// ResultsDir is the base directory for persisted runs (contains index/).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Oracle OracleConfig `json:"oracle" yaml:"oracle"`
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Store  StoreConfig  `json:"store" yaml:"store"`
}
