// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/units"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize",
	Short: "Split a document into indexed sentence units",
	Long: `Tokenize shows how a document splits into the sentence units the
minimization search operates on. The indices printed here are the unit
indices that appear in provenance results.`,
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("document", "", "path to the document (plain text or Markdown)")
	tokenizeCmd.Flags().Bool("json", false, "output units as JSON")

	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) error {
	document, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	store := units.Load(document)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(store.Units())
	}

	for _, u := range store.Units() {
		fmt.Printf("%4d  %s\n", u.Index, u.Text)
	}
	fmt.Fprintf(os.Stderr, "%d units\n", store.Len())
	return nil
}
