// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-miner/internal/content"
	"github.com/pdiddy/paper-miner/pkg/types"
)

var findCmd = &cobra.Command{
	Use:   "find PATTERN",
	Short: "Search a paper's text for a regular expression",
	Long: `Find extracts the text of a paper and lists every distinct match of
PATTERN (case-insensitive, RE2 syntax) with the sentences it occurs in.

Example:
  paper-miner find 'PRJ[A-Z]{2}\d{6}' --url https://example.org/paper`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	addRefFlags(findCmd)
	findCmd.Flags().String("selector", "", "CSS selector restricting the text taken from HTML pages")
	findCmd.Flags().Bool("json", false, "output matches as JSON")

	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if err := content.ValidatePattern(pattern); err != nil {
		return err
	}
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

	items := policy.FindInContent(cmd.Context(), ref, pattern)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatFindOutput(cmd, items, jsonOutput)
}

func formatFindOutput(cmd *cobra.Command, items []types.FoundItem, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		if items == nil {
			items = []types.FoundItem{}
		}
		return writeJSON(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}

	fmt.Fprintf(out, "%-24s  %-5s  %s\n", "Match", "Count", "Sentence")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, item := range items {
		for i, sentence := range item.Sentences {
			match, count := "", ""
			if i == 0 {
				match, count = item.Text, fmt.Sprint(len(item.Sentences))
			}
			fmt.Fprintf(out, "%-24s  %-5s  %s\n", truncate(match, 24), count, truncate(sentence, 120))
		}
	}
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
