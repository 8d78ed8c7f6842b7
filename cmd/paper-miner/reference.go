// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-miner/internal/content"
	"github.com/pdiddy/paper-miner/internal/pdftext"
	"github.com/pdiddy/paper-miner/internal/render"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// addRefFlags registers the flags that describe a single paper reference.
func addRefFlags(cmd *cobra.Command) {
	cmd.Flags().String("ref", "", "YAML file holding a paper reference (title, url, source)")
	cmd.Flags().String("title", "", "paper title")
	cmd.Flags().String("url", "", "main (landing page) URL of the paper")
	cmd.Flags().String("source-kind", "", "kind of the direct source: pdf or html (default: guessed from --source-url)")
	cmd.Flags().String("source-url", "", "direct URL of the paper's PDF or full-text page")
	cmd.MarkFlagsMutuallyExclusive("ref", "url")
	cmd.MarkFlagsMutuallyExclusive("ref", "source-url")
}

// referenceFromFlags builds the reference given by --ref or the individual
// reference flags.
func referenceFromFlags(cmd *cobra.Command) (types.PaperReference, error) {
	var ref types.PaperReference
	if path, _ := cmd.Flags().GetString("ref"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ref, fmt.Errorf("reading reference file: %w", err)
		}
		if err := yaml.Unmarshal(data, &ref); err != nil {
			return ref, fmt.Errorf("parsing reference file %s: %w", path, err)
		}
	} else {
		ref.Title, _ = cmd.Flags().GetString("title")
		ref.URL, _ = cmd.Flags().GetString("url")
		ref.Source.URL, _ = cmd.Flags().GetString("source-url")
		kind, _ := cmd.Flags().GetString("source-kind")
		ref.Source.Kind = types.SourceKind(kind)
	}

	if ref.Source.URL != "" && ref.Source.Kind == "" {
		ref.Source.Kind = types.KindForURL(ref.Source.URL)
	}
	if ref.URL == "" && ref.Source.URL == "" {
		return ref, fmt.Errorf("provide --ref, --url, or --source-url")
	}
	return ref, nil
}

// addExtractionFlags registers the persistent flags that tune page
// rendering and content extraction, bound to their config keys.
func addExtractionFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("engine", "", "page renderer: http or browser")
	cmd.PersistentFlags().String("mode", "", "extraction mode: legacy or source-aware")
	cmd.PersistentFlags().String("pdf-backend", "", "PDF extractor: native or markitdown")
	cmd.PersistentFlags().Bool("solve-captcha", false, "wait for captchas to be cleared in the browser")

	bindPersistentFlag(cmd, "render.engine", "engine")
	bindPersistentFlag(cmd, "extraction.mode", "mode")
	bindPersistentFlag(cmd, "pdf.backend", "pdf-backend")
	bindPersistentFlag(cmd, "render.solve_captcha", "solve-captcha")
}

// newPolicy builds the content extraction policy for cfg. The caller must
// close the returned renderer.
func newPolicy(ctx context.Context, cfg types.PipelineConfig, selector string) (*content.Policy, render.Renderer, error) {
	client := &http.Client{Timeout: cfg.Render.Timeout}

	renderer, err := render.New(cfg.Render, client, logger)
	if err != nil {
		return nil, nil, err
	}

	policy := &content.Policy{
		Mode:     cfg.Extraction.Mode,
		Renderer: renderer,
		RenderOptions: render.TextOptions{
			Selector:     selector,
			SolveCaptcha: cfg.Render.SolveCaptcha,
		},
		Logger: logger,
	}

	// Legacy mode never reads the direct source.
	if cfg.Extraction.Mode == types.ModeSourceAware {
		policy.PDF, err = pdftext.New(ctx, cfg.Extraction.PDFBackend, client, cfg.Render.UserAgent)
		if err != nil {
			renderer.Close()
			return nil, nil, fmt.Errorf("setting up PDF backend: %w", err)
		}
	}
	return policy, renderer, nil
}

// selectorFlag returns --selector or the configured default.
func selectorFlag(cmd *cobra.Command) string {
	if s, _ := cmd.Flags().GetString("selector"); s != "" {
		return s
	}
	return viper.GetString("render.selector")
}
