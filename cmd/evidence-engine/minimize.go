// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/blocks"
	"github.com/pdiddy/evidence-engine/internal/equivalence"
	"github.com/pdiddy/evidence-engine/internal/minimize"
	"github.com/pdiddy/evidence-engine/internal/oracle"
	"github.com/pdiddy/evidence-engine/internal/provstore"
	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/internal/units"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Find minimal evidence for an answer",
	Long: `Minimize splits a document into sentence units, asks the oracle for the
full-document answer, then searches for up to K distinct minimal subsets of
units that reproduce it. Results stream to stdout as they are found and can
be persisted to a JSONL file and the provenance store.`,
	RunE: runMinimize,
}

func init() {
	minimizeCmd.Flags().String("document", "", "path to the document (plain text or Markdown)")
	minimizeCmd.Flags().String("question", "", "question whose answer to explain")
	minimizeCmd.Flags().Int("top-k", 0, "maximum number of minimal provenances to find")
	minimizeCmd.Flags().Int("stop-length", 0, "subset size handed to the exact reducer")
	minimizeCmd.Flags().String("metric", "", "equivalence metric: lexical or semantic")
	minimizeCmd.Flags().Bool("verify-root", false, "re-verify the full-document answer before searching")
	minimizeCmd.Flags().Bool("no-block-scores", false, "disable block relevance scoring (explore left halves first)")
	minimizeCmd.Flags().String("out", "", "append results to a JSONL file")
	minimizeCmd.Flags().Bool("save", false, "persist the run and results to the provenance store")
	minimizeCmd.Flags().Duration("deadline", 0, "abort the search after this duration")

	rootCmd.AddCommand(minimizeCmd)
}

func runMinimize(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("question")
	if question == "" {
		return fmt.Errorf("--question is required")
	}

	document, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	store := units.Load(document)
	if store.Len() == 0 {
		return fmt.Errorf("document contains no sentences")
	}
	fmt.Fprintf(os.Stderr, "%d units\n", store.Len())

	engineCfg := engineConfigFromFlags(cmd)

	o, err := oracle.New(oracleConfig(cmd))
	if err != nil {
		return err
	}
	checker := equivalence.ForMetric(o, engineCfg)

	ctx := context.Background()
	if deadline, _ := cmd.Flags().GetDuration("deadline"); deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	emitters, closeEmitters, err := buildEmitters(cmd)
	if err != nil {
		return err
	}
	defer closeEmitters()

	deps := minimize.Deps{
		Units:    store,
		Oracle:   o,
		Checker:  checker,
		Progress: os.Stderr,
	}

	// With --save the provenance store joins the emitter chain, so every
	// result is persisted the moment it is found; a deadline abort keeps
	// what was already discovered. The run row is written through the
	// engine's hook, as soon as the original answer is known.
	save, _ := cmd.Flags().GetBool("save")
	var run provstore.Run
	if save {
		pstore, err := provstore.Open(storeConfig())
		if err != nil {
			return err
		}
		defer pstore.Close()

		run = provstore.NewRun(question, document, store.Len(), types.NoAnswer())
		deps.OnOriginal = func(ctx context.Context, original types.Answer) error {
			run.Answer = original.Strings
			return pstore.SaveRun(ctx, run)
		}
		emitters = append(emitters, pstore.Emitter(ctx, run.ID))
	}
	deps.Emitter = emitters

	// Block scoring needs the original answer, which the engine obtains
	// itself, so the decider attaches through the factory hook.
	noScores, _ := cmd.Flags().GetBool("no-block-scores")
	if !noScores && engineCfg.MaxBlocks != 0 {
		scorer := blocks.NewOracleScorer(o)
		deps.NewDecider = func(ctx context.Context, question string, original types.Answer) (minimize.Decider, error) {
			return blocks.NewDecider(ctx, scorer, store, question, original, engineCfg.MaxBlocks)
		}
	}

	engine, err := minimize.New(deps, engineCfg)
	if err != nil {
		return err
	}

	summary, err := engine.Run(ctx, question)
	if err != nil {
		return err
	}

	if save && len(summary.Results) > 0 {
		fmt.Fprintf(os.Stderr, "saved run %s (%d results)\n", run.ID, len(summary.Results))
	}

	fmt.Fprintf(os.Stderr, "%d provenance(s), %d oracle calls, %d in / %d out tokens, %s\n",
		len(summary.Results), summary.OracleCalls,
		summary.Cost.InputTokens, summary.Cost.OutputTokens,
		summary.Elapsed.Round(time.Millisecond))
	return nil
}

// engineConfigFromFlags merges viper config with command flags.
func engineConfigFromFlags(cmd *cobra.Command) types.EngineConfig {
	cfg := types.EngineConfig{
		TopK:                viper.GetInt("engine.top_k"),
		StopLength:          viper.GetInt("engine.stop_length"),
		VerifyRoot:          viper.GetBool("engine.verify_root"),
		Metric:              types.EquivalenceMetric(viper.GetString("engine.equivalence_metric")),
		SimilarityThreshold: viper.GetFloat64("engine.similarity_threshold"),
		MinSimilarityLength: viper.GetInt("engine.min_similarity_length"),
		MaxBlocks:           viper.GetInt("engine.max_blocks"),
	}

	if v, _ := cmd.Flags().GetInt("top-k"); v > 0 {
		cfg.TopK = v
	}
	if v, _ := cmd.Flags().GetInt("stop-length"); v > 0 {
		cfg.StopLength = v
	}
	if v, _ := cmd.Flags().GetString("metric"); v != "" {
		cfg.Metric = types.EquivalenceMetric(v)
	}
	if v, _ := cmd.Flags().GetBool("verify-root"); v {
		cfg.VerifyRoot = true
	}
	return cfg
}

// buildEmitters assembles the emitter chain: stdout always, JSONL when
// --out is set.
func buildEmitters(cmd *cobra.Command) (report.Multi, func(), error) {
	chain := report.Multi{&report.Writer{W: os.Stdout}}
	closer := func() {}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		jsonl, err := report.NewJSONL(out)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, jsonl)
		closer = func() { jsonl.Close() }
	}
	return chain, closer, nil
}
