// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/oracle"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Probe the oracle with a question over a document",
	Long: `Ask sends one question to the configured oracle with the document as
context and prints the answer list. Useful for checking the oracle setup and
for capturing the full-document answer a minimization run will match against.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("document", "", "path to the context document")
	askCmd.Flags().String("question", "", "question to ask")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("question")
	if question == "" {
		return fmt.Errorf("--question is required")
	}

	document, err := loadDocument(cmd)
	if err != nil {
		return err
	}

	o, err := oracle.New(oracleConfig(cmd))
	if err != nil {
		return err
	}

	answer, cost, err := o.Ask(context.Background(), question, document)
	if err != nil {
		return err
	}

	if answer.IsNoAnswer() {
		fmt.Println("no answer")
	} else {
		for _, s := range answer.Strings {
			fmt.Println(s)
		}
	}
	fmt.Fprintf(os.Stderr, "%d in / %d out tokens\n", cost.InputTokens, cost.OutputTokens)
	return nil
}
