// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// RunFile is the on-disk snapshot of one collection run. It can be
// reloaded later to download or re-export papers without searching again.
type RunFile struct {
	Query   RunQuery                    `yaml:"query"`
	Papers  []types.PaperWithAccessions `yaml:"papers"`
	Summary RunSummary                  `yaml:"summary"`
}

// RunQuery records how the papers were collected.
type RunQuery struct {
	Text       string `yaml:"text"`
	Backend    string `yaml:"backend"`
	Target     int    `yaml:"target"`
	Accessions bool   `yaml:"accessions"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewRunFile builds a snapshot stamped with the current time.
func NewRunFile(q RunQuery, papers []types.PaperWithAccessions) RunFile {
	return RunFile{
		Query:   q,
		Papers:  papers,
		Summary: RunSummary{Total: len(papers), Timestamp: time.Now().UTC()},
	}
}

// References returns a paper reference for every paper in the run.
func (rf RunFile) References() []types.PaperReference {
	refs := make([]types.PaperReference, len(rf.Papers))
	for i, p := range rf.Papers {
		refs[i] = types.ReferenceFromResult(p.PaperEntity)
	}
	return refs
}

// WriteRunFile saves rf as YAML.
func WriteRunFile(path string, rf RunFile) error {
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}
