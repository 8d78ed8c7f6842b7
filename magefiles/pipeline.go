//go:build mage

package main

import (
	"fmt"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups targets that run the CLI against live sources.
type Pipeline mg.Namespace

// Collect builds the CLI and collects up to max papers for query into
// output/results.csv, recording the run in the database.
func (Pipeline) Collect(query string, max int) error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "collect", query,
		"--max", strconv.Itoa(max),
		"--out", "output/results.csv",
		"--run-file", "output/run.yaml",
		"--db", "data/paper-miner.db")
}

// Accessions collects papers for query that mention BioProject accessions.
func (Pipeline) Accessions(query string, max int) error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "collect", query,
		"--accessions",
		"--max", strconv.Itoa(max),
		"--out", "output/accessions.csv",
		"--db", "data/paper-miner.db")
}

// Download fetches the PDFs listed in output/run.yaml into papers/.
func (Pipeline) Download() error {
	mg.Deps(Build)
	if err := sh.RunV(binPath, "download", "--run-file", "output/run.yaml", "--output-dir", "papers"); err != nil {
		return fmt.Errorf("downloading run: %w", err)
	}
	return nil
}

// Runs lists the runs recorded in the database.
func (Pipeline) Runs() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "runs", "--db", "data/paper-miner.db")
}
