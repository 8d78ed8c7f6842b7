// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/acquire"
	"github.com/pdiddy/paper-miner/internal/export"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a paper's PDF when its source is a PDF",
	Long: `Download saves the direct source of a paper reference when that source
is a PDF. References with an HTML source are skipped.

With --run-file every paper of a saved run is considered; PDFs already
present in the output directory are skipped.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	addRefFlags(downloadCmd)
	downloadCmd.Flags().String("output-dir", "", "directory for downloaded PDFs (default papers)")
	downloadCmd.Flags().String("run-file", "", "download every PDF listed in a saved run file")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	downloadCmd.MarkFlagsMutuallyExclusive("run-file", "ref")
	downloadCmd.MarkFlagsMutuallyExclusive("run-file", "url")
	downloadCmd.MarkFlagsMutuallyExclusive("run-file", "source-url")

	bindFlag(downloadCmd, "download.output_dir", "output-dir")
	bindFlag(downloadCmd, "download.delay", "delay")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	downloader := &acquire.HTTPDownloader{
		Client:    &http.Client{Timeout: cfg.Download.Timeout},
		UserAgent: cfg.Download.UserAgent,
	}
	out := cmd.OutOrStdout()

	if runFile, _ := cmd.Flags().GetString("run-file"); runFile != "" {
		rf, err := export.ReadRunFile(runFile)
		if err != nil {
			return err
		}
		result := acquire.DownloadBatch(cmd.Context(), downloader, rf.References(), cfg.Download.OutputDir,
			viper.GetDuration("download.delay"), out, logger)
		if result.HasFailures() {
			return fmt.Errorf("%d paper(s) failed download", result.Failed)
		}
		return nil
	}

	ref, err := referenceFromFlags(cmd)
	if err != nil {
		return err
	}
	path, err := acquire.DownloadIfPDF(cmd.Context(), downloader, ref, cfg.Download.OutputDir, logger)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(out, "skipped: source of %q is not a PDF\n", ref.Title)
		return nil
	}
	fmt.Fprintf(out, "downloaded: %s\n", path)
	return nil
}
