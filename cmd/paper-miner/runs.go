// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/store"
	"github.com/pdiddy/paper-miner/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, inspect, and search recorded collection runs",
	Long: `Runs reads the run database written by collect --db. Without a
subcommand it lists recorded runs, newest first.`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the papers of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

// --- search subcommand ---

var runsSearchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Find recorded papers by title, description, or accession number",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsSearch,
}

func init() {
	runsCmd.PersistentFlags().Bool("json", false, "output as JSON")
	runsSearchCmd.Flags().Int("limit", 20, "maximum number of papers")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsSearchCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*store.Store, error) {
	return store.Open(viper.GetString("store.path"))
}

func runRunsList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(out, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-20s  %-9s  %-6s  %-6s  %s\n", "ID", "Created", "Backend", "Target", "Papers", "Query")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, r := range runs {
		query := r.Query
		if r.Accessions {
			query += " [accessions]"
		}
		fmt.Fprintf(out, "%-4d  %-20s  %-9s  %-6d  %-6d  %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Backend, r.Target, r.Total, truncate(query, 60))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.Papers(cmd.Context(), id)
	if err != nil {
		return err
	}
	return formatPapers(cmd, papers)
}

func runRunsSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.Search(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}
	return formatPapers(cmd, papers)
}

func formatPapers(cmd *cobra.Command, papers []types.PaperWithAccessions) error {
	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if papers == nil {
			papers = []types.PaperWithAccessions{}
		}
		return writeJSON(out, papers)
	}
	if len(papers) == 0 {
		fmt.Fprintln(out, "No papers found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-60s  %-5s  %s\n", "#", "Title", "Cites", "Accessions")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for i, p := range papers {
		fmt.Fprintf(out, "%-4d  %-60s  %-5d  %s\n",
			i+1, truncate(p.Title, 60), p.CitationCount, strings.Join(p.AccessionNumbers, " "))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
