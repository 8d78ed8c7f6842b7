//go:build mage

// Package main contains Mage build targets for paper-miner developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI writes to by default.
var projectDirs = []string{
	"data",
	"papers",
	"output",
	".secrets",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "paper-miner"
	cmdPkg  = "./cmd/paper-miner"
)

// binPath is the location of the built CLI.
var binPath = filepath.Join(binDir, binName)

// Build compiles the CLI binary into bin/, stamping the version from
// PAPER_MINER_VERSION when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	ldflags := ""
	if v := os.Getenv("PAPER_MINER_VERSION"); v != "" {
		ldflags = "-X main.version=" + v
	}
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the unit tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Stats prints project metrics: Go production/test lines per package and
// documentation word count.
func Stats() error {
	counts, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	fmt.Printf("%-28s  %6s  %6s\n", "Package", "Prod", "Test")
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-28s  %6d  %6d\n", dir, c.prod, c.test)
		prod += c.prod
		test += c.test
	}
	fmt.Printf("\nLines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

type lineCount struct {
	prod, test int
}

// skipDir reports whether a directory is outside the module's own code.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir || name == "testdata")
}

// countGoLines walks the tree and counts non-blank lines in Go files,
// grouped by package directory.
func countGoLines(root string) (map[string]lineCount, error) {
	counts := make(map[string]lineCount)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		dir := filepath.Dir(path)
		c := counts[dir]
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		counts[dir] = c
		return nil
	})
	return counts, err
}

// countDocWords counts words in the Markdown files at the top of root.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(bytes.Fields(data))
	}
	return total, nil
}
