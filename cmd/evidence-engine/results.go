// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/provstore"
)

var resultsCmd = &cobra.Command{
	Use:   "results [query]",
	Short: "Query persisted provenance results",
	Long: `Results searches the provenance store with FTS5 full-text search over
evidence text, optionally filtered by run or question. With --runs it lists
stored runs instead.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().String("run", "", "filter by run ID")
	resultsCmd.Flags().String("question", "", "filter by question substring")
	resultsCmd.Flags().Int("max-results", 0, "maximum number of results to return")
	resultsCmd.Flags().Bool("runs", false, "list stored runs instead of results")
	resultsCmd.Flags().Bool("json", false, "output as JSON")
	resultsCmd.Flags().String("export", "", "export matching results to results/index/export.<format> (yaml or json)")

	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	store, err := provstore.Open(storeConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	if listRuns, _ := cmd.Flags().GetBool("runs"); listRuns {
		runs, err := store.Runs(context.Background(), maxResults)
		if err != nil {
			return err
		}
		return formatRuns(runs, jsonOutput)
	}

	opts := provstore.QueryOptions{
		Query:      strings.Join(args, " "),
		MaxResults: maxResults,
	}
	opts.RunID, _ = cmd.Flags().GetString("run")
	opts.Question, _ = cmd.Flags().GetString("question")

	if format, _ := cmd.Flags().GetString("export"); format != "" {
		switch format {
		case "yaml":
			if err := store.ExportYAML(context.Background(), opts); err != nil {
				return err
			}
			fmt.Println("Exported to results/index/export.yaml")
		case "json":
			if err := store.ExportJSON(context.Background(), opts); err != nil {
				return err
			}
			fmt.Println("Exported to results/index/export.json")
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		return nil
	}

	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --run, or --question")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}
	return formatResults(results, jsonOutput)
}

func formatResults(results []provstore.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("run %s  result %d  units %v\n", shortID(r.RunID), r.ResultID, r.ResultIndices)
		fmt.Printf("  q: %s\n", r.RunQuestion)
		fmt.Printf("  %s\n", r.Text)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func formatRuns(runs []provstore.Run, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %d units  %s\n",
			shortID(r.ID), r.CreatedAt.Format("2006-01-02 15:04"), r.UnitCount, r.Question)
	}
	return nil
}

// shortID truncates a UUID for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
