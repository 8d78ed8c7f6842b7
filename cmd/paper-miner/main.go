// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-miner CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	// logger is configured from --verbose before any command runs.
	logger = slog.New(slog.DiscardHandler)
)

// rootCmd is the base command for the paper-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-miner",
	Short: "Collect academic papers and mine their text",
	Long: `paper-miner collects papers from academic search sources, reads their
text from landing pages or PDFs, and mines it for BioProject accession
numbers, arbitrary patterns, and LLM summaries.

Collected papers are exported to CSV and can also be recorded in a local
SQLite database, saved as a YAML run file, or written as a CSL bibliography.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-miner.yaml or ~/.config/paper-miner/paper-miner.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().String("db", "", "run database path (default data/paper-miner.db)")
	bindPersistentFlag(rootCmd, "store.path", "db")

	addExtractionFlags(rootCmd)
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-miner"))
		}
	}

	viper.SetEnvPrefix("PAPER_MINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
