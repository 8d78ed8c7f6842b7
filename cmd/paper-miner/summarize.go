// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-miner/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a paper with Claude",
	Long: `Summarize extracts the text of a paper reference, trims it to
summary.max_chars, and asks Claude for a one-paragraph summary.

The API key is read from .secrets/anthropic-api-key or ANTHROPIC_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runSummarize,
}

func init() {
	addRefFlags(summarizeCmd)
	summarizeCmd.Flags().String("selector", "", "CSS selector restricting the text taken from HTML pages")
	summarizeCmd.Flags().String("model", "", "Claude model identifier")
	summarizeCmd.Flags().Int("max-chars", 0, "maximum characters of paper text sent to the model")

	bindFlag(summarizeCmd, "summary.model", "model")
	bindFlag(summarizeCmd, "summary.max_chars", "max-chars")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ref, err := referenceFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	summarizer, err := summarize.NewAnthropic(cfg.Summary, &http.Client{Timeout: 5 * defaultTimeout}, logger)
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
		return fmt.Errorf("no text could be extracted for %q", ref.Title)
	}

	summary, err := summarizer.Summarize(cmd.Context(), ref.Title, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}
