// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/secrets"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Minimal-evidence provenance for LLM answers",
	Long: `evidence-engine finds the smallest sets of sentences in a document that are
sufficient to reproduce an answer a model gave from the whole document.

Split a document into units with tokenize, run the minimization search with
minimize, probe the oracle directly with ask, and query persisted provenances
with results.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "oracle provider: claude or openai")
	rootCmd.PersistentFlags().String("model", "", "oracle model identifier")
	rootCmd.PersistentFlags().String("base-url", "", "oracle endpoint override (OpenAI-compatible servers)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("oracle.provider", string(types.ProviderClaude))
	viper.SetDefault("oracle.timeout", "120s")
	viper.SetDefault("oracle.max_retries", 5)
	viper.SetDefault("engine.top_k", 5)
	viper.SetDefault("engine.stop_length", 5)
	viper.SetDefault("engine.equivalence_metric", string(types.MetricLexical))
	viper.SetDefault("engine.max_blocks", 20)
	viper.SetDefault("store.results_dir", "results")
	viper.SetDefault("store.max_results", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// oracleConfig assembles the oracle settings from config file, env,
// secrets, and flags, in ascending precedence.
func oracleConfig(cmd *cobra.Command) types.OracleConfig {
	cfg := types.OracleConfig{
		Provider:   types.OracleProvider(viper.GetString("oracle.provider")),
		Model:      viper.GetString("oracle.model"),
		APIKey:     viper.GetString("oracle.api_key"),
		BaseURL:    viper.GetString("oracle.base_url"),
		Timeout:    viper.GetDuration("oracle.timeout"),
		MaxRetries: viper.GetInt("oracle.max_retries"),
	}

	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.Provider = types.OracleProvider(v)
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}

	if cfg.APIKey == "" {
		switch cfg.Provider {
		case types.ProviderClaude:
			cfg.APIKey = loadedSecrets["anthropic-api-key"]
		case types.ProviderOpenAI:
			cfg.APIKey = loadedSecrets["openai-api-key"]
		}
	}
	return cfg
}

// storeConfig assembles the result store settings.
func storeConfig() types.StoreConfig {
	return types.StoreConfig{
		ResultsDir: viper.GetString("store.results_dir"),
		MaxResults: viper.GetInt("store.max_results"),
	}
}

// loadDocument reads the document file named by the --document flag.
func loadDocument(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("document")
	if path == "" {
		return "", fmt.Errorf("--document is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
