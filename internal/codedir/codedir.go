// Package codedir manages the folder that runnable sources live in.
package codedir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/michaelbrown/runcheck/internal/runner"
)

// FolderName is the required base name for an explicitly configured
// code folder.
const FolderName = "check_code"

// Resolve validates and creates the code folder. An empty path defaults
// to <cwd>/check_code; a configured path must itself be named
// check_code so a stray config value cannot point the tool at an
// arbitrary directory.
func Resolve(configured string) (string, error) {
	var dir string
	if configured == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		dir = filepath.Join(wd, FolderName)
	} else {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("resolving code folder path: %w", err)
		}
		if strings.ToLower(filepath.Base(abs)) != FolderName {
			return "", fmt.Errorf("code folder must be named %q, got %q", FolderName, filepath.Base(abs))
		}
		dir = abs
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating code folder %s: %w", dir, err)
	}
	return dir, nil
}

// List returns the names of supported source files in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing code folder %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if runner.Supported(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
