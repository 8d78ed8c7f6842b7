// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Print the extracted text of a paper",
	Long: `Text resolves a paper reference into plain text and prints it.

In source-aware mode the direct source (PDF or full-text page) is read
first and the landing page is the fallback. In legacy mode only the
landing page is read. Nothing is printed when every source fails.`,
	Args: cobra.NoArgs,
	RunE: runText,
}

func init() {
	addRefFlags(textCmd)
	textCmd.Flags().String("selector", "", "CSS selector restricting the text taken from HTML pages")

	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	ref, err := referenceFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	policy, renderer, err := newPolicy(cmd.Context(), cfg, selectorFlag(cmd))
	if err != nil {
		return err
	}
	defer renderer.Close()

	text := policy.ExtractText(cmd.Context(), ref)
	if text == "" {
		logger.Warn("no text extracted", "title", ref.Title, "url", ref.URL)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
