// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/secrets"
	"github.com/pdiddy/paper-miner/internal/store"
	"github.com/pdiddy/paper-miner/internal/summarize"
	"github.com/pdiddy/paper-miner/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "paper-miner/0.1"
)

func setDefaults() {
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("search.backend", "scholar")
	viper.SetDefault("search.page_size", 25)
	viper.SetDefault("search.page_delay", 2*time.Second)
	viper.SetDefault("render.engine", string(types.EngineHTTP))
	viper.SetDefault("render.headless", true)
	viper.SetDefault("render.timeout", defaultTimeout)
	viper.SetDefault("render.captcha_timeout", 2*time.Minute)
	viper.SetDefault("extraction.mode", string(types.ModeSourceAware))
	viper.SetDefault("pdf.backend", string(types.PDFNative))
	viper.SetDefault("accession.engine", string(types.EngineBrowser))
	viper.SetDefault("download.output_dir", "papers")
	viper.SetDefault("download.delay", defaultDelay)
	viper.SetDefault("summary.model", summarize.DefaultModel)
	viper.SetDefault("summary.max_chars", summarize.DefaultMaxChars)
	viper.SetDefault("summary.max_tokens", summarize.DefaultMaxTokens)
	viper.SetDefault("summary.max_retries", summarize.DefaultMaxRetries)
	viper.SetDefault("store.path", store.DefaultPath)
}

// bindFlag binds a command flag to a viper key. Binding errors only occur
// for unknown flags, which is a programming error.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

// bindPersistentFlag is bindFlag for persistent flags.
func bindPersistentFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

// pipelineConfig assembles stage configuration from viper and the secrets
// directory. Secrets take precedence over config values.
func pipelineConfig() (types.PipelineConfig, error) {
	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}

	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: httpCfg,
			Backend:    viper.GetString("search.backend"),
			PageSize:   viper.GetInt("search.page_size"),
			PageDelay:  viper.GetDuration("search.page_delay"),
			Email:      loadedSecrets.Lookup(secrets.OpenAlexEmail, viper.GetString("search.email")),
			APIKey:     loadedSecrets.Lookup(secrets.SemanticScholarAPIKey, viper.GetString("search.api_key")),
		},
		Render: types.RenderConfig{
			Engine:         types.RenderEngine(viper.GetString("render.engine")),
			Headless:       viper.GetBool("render.headless"),
			ChromePath:     viper.GetString("render.chrome_path"),
			Timeout:        viper.GetDuration("render.timeout"),
			SolveCaptcha:   viper.GetBool("render.solve_captcha"),
			CaptchaTimeout: viper.GetDuration("render.captcha_timeout"),
			UserAgent:      httpCfg.UserAgent,
		},
		Extraction: types.ExtractionConfig{
			Mode:       types.ExtractionMode(viper.GetString("extraction.mode")),
			PDFBackend: types.PDFBackend(viper.GetString("pdf.backend")),
		},
		Accession: types.AccessionConfig{
			Engine: types.RenderEngine(viper.GetString("accession.engine")),
		},
		Download: types.DownloadConfig{
			HTTPConfig: httpCfg,
			OutputDir:  viper.GetString("download.output_dir"),
		},
		Summary: types.SummaryConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("summary.model"),
				APIKey:     loadedSecrets.Lookup(secrets.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY")),
				MaxRetries: viper.GetInt("summary.max_retries"),
			},
			MaxChars:  viper.GetInt("summary.max_chars"),
			MaxTokens: viper.GetInt("summary.max_tokens"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}

	switch cfg.Extraction.Mode {
	case types.ModeLegacy, types.ModeSourceAware:
	default:
		return cfg, fmt.Errorf("unknown extraction mode %q: use legacy or source-aware", cfg.Extraction.Mode)
	}
	switch cfg.Extraction.PDFBackend {
	case types.PDFNative, types.PDFMarkitdown:
	default:
		return cfg, fmt.Errorf("unknown PDF backend %q: use native or markitdown", cfg.Extraction.PDFBackend)
	}
	return cfg, nil
}

// accessionRenderConfig returns the render settings used to scan result
// pages for accessions: the shared settings with the accession engine,
// which defaults to the browser.
func accessionRenderConfig(cfg types.PipelineConfig) types.RenderConfig {
	rc := cfg.Render
	rc.Engine = cfg.Accession.Engine
	if rc.Engine == "" {
		rc.Engine = types.EngineBrowser
	}
	return rc
}
