// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/accession"
	"github.com/pdiddy/paper-miner/internal/acquire"
	"github.com/pdiddy/paper-miner/internal/export"
	"github.com/pdiddy/paper-miner/internal/render"
	"github.com/pdiddy/paper-miner/internal/search"
	"github.com/pdiddy/paper-miner/internal/store"
	"github.com/pdiddy/paper-miner/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect QUERY...",
	Short: "Collect papers for a query and export them to CSV",
	Long: `Collect pages through search results for a query until --max papers are
gathered or the source runs out, and writes them to a CSV file.

With --accessions each result page is rendered and only papers mentioning a
BioProject accession number (PRJxx000000) are kept, with their accessions
in an extra column. Result pages are rendered in a headless browser so
accessions injected by page scripts are found; --accession-engine http
switches to plain HTTP fetching.

The run can also be recorded in the database (--db or store.record), saved
as a YAML run file, written as a CSL bibliography, and have its PDFs
downloaded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Int("max", 10, "number of papers to collect (0 = all available)")
	collectCmd.Flags().String("backend", "", "search source: scholar, openalex, arxiv, or semantic")
	collectCmd.Flags().Bool("accessions", false, "keep only papers with BioProject accession numbers")
	collectCmd.Flags().String("out", "results.csv", "CSV output path (- for stdout)")
	collectCmd.Flags().String("download-dir", "", "download PDFs of collected papers into this directory")
	collectCmd.Flags().String("run-file", "", "write a YAML snapshot of the run to this path")
	collectCmd.Flags().String("csl", "", "write a CSL-YAML bibliography to this path")
	collectCmd.Flags().Duration("page-delay", 0, "minimum interval between result pages")
	collectCmd.Flags().String("accession-engine", "", "renderer for accession scanning: browser or http (default browser)")

	bindFlag(collectCmd, "search.backend", "backend")
	bindFlag(collectCmd, "search.page_delay", "page-delay")
	bindFlag(collectCmd, "accession.engine", "accession-engine")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	target, _ := cmd.Flags().GetInt("max")
	withAccessions, _ := cmd.Flags().GetBool("accessions")

	ctx := cmd.Context()
	client := &http.Client{Timeout: cfg.Search.Timeout}
	searcher, err := search.NewBackend(cfg.Search.Backend, client, cfg.Search)
	if err != nil {
		return err
	}

	papers, err := collectPapers(ctx, cfg, searcher, query, target, withAccessions)
	if err != nil {
		return err
	}

	// Status lines move to stderr when the CSV itself goes to stdout.
	outPath, _ := cmd.Flags().GetString("out")
	out := cmd.OutOrStdout()
	if outPath == "-" {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintf(out, "Collected %d paper(s) from %s for %q\n", len(papers), searcher.Name(), query)

	if err := writeResults(cmd.OutOrStdout(), out, outPath, papers, withAccessions); err != nil {
		return err
	}

	run := store.Run{Query: query, Backend: searcher.Name(), Target: target, Accessions: withAccessions}
	if cmd.Flags().Changed("db") || viper.GetBool("store.record") {
		if err := recordRun(ctx, cfg.Store.Path, run, papers, out); err != nil {
			return err
		}
	}

	if path, _ := cmd.Flags().GetString("run-file"); path != "" {
		rf := export.NewRunFile(export.RunQuery{Text: query, Backend: run.Backend, Target: target, Accessions: withAccessions}, papers)
		if err := export.WriteRunFile(path, rf); err != nil {
			return err
		}
		fmt.Fprintf(out, "Run file: %s\n", path)
	}

	if path, _ := cmd.Flags().GetString("csl"); path != "" {
		err := export.WriteFile(path, func(w io.Writer) error { return export.FormatCSL(w, papers) })
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Bibliography: %s\n", path)
	}

	if dir, _ := cmd.Flags().GetString("download-dir"); dir != "" {
		refs := make([]types.PaperReference, len(papers))
		for i, p := range papers {
			refs[i] = types.ReferenceFromResult(p.PaperEntity)
		}
		downloader := &acquire.HTTPDownloader{
			Client:    &http.Client{Timeout: cfg.Download.Timeout},
			UserAgent: cfg.Download.UserAgent,
		}
		result := acquire.DownloadBatch(ctx, downloader, refs, dir, viper.GetDuration("download.delay"), out, logger)
		if result.HasFailures() {
			return fmt.Errorf("%d paper(s) failed download", result.Failed)
		}
	}
	return nil
}

// collectPapers drives the search cursor. Without accessions every result
// is kept and carries an empty accession list.
func collectPapers(ctx context.Context, cfg types.PipelineConfig, searcher search.Searcher, query string, target int, withAccessions bool) ([]types.PaperWithAccessions, error) {
	if !withAccessions {
		entities, err := search.Collect(ctx, searcher, query, target, search.Identity, search.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		papers := make([]types.PaperWithAccessions, len(entities))
		for i, e := range entities {
			papers[i] = types.PaperWithAccessions{PaperEntity: e}
		}
		return papers, nil
	}

	renderer, err := render.New(accessionRenderConfig(cfg), &http.Client{Timeout: cfg.Render.Timeout}, logger)
	if err != nil {
		return nil, err
	}
	extractor := &accession.Extractor{Renderer: renderer, Logger: logger}
	return search.Collect(ctx, searcher, query, target, extractor.Transform,
		search.WithRelease(renderer), search.WithLogger(logger))
}

func writeResults(stdout, out io.Writer, path string, papers []types.PaperWithAccessions, withAccessions bool) error {
	write := func(w io.Writer) error {
		if withAccessions {
			return export.WriteAccessionCSV(w, papers)
		}
		entities := make([]types.PaperEntity, len(papers))
		for i, p := range papers {
			entities[i] = p.PaperEntity
		}
		return export.WriteCSV(w, entities)
	}

	if path == "-" {
		return write(stdout)
	}
	if err := export.WriteFile(path, write); err != nil {
		return err
	}
	fmt.Fprintf(out, "Results: %s\n", path)
	return nil
}

func recordRun(ctx context.Context, path string, run store.Run, papers []types.PaperWithAccessions, out io.Writer) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.RecordRun(ctx, run, papers)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded run %d in %s\n", id, path)
	return nil
}
