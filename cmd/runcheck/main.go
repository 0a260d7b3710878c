package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/runcheck/internal/config"
	"github.com/michaelbrown/runcheck/internal/runner"
	"github.com/michaelbrown/runcheck/internal/storage"
	"github.com/michaelbrown/runcheck/internal/storage/sqlite"
)

var (
	codeDirFlag   string
	timeLimitFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "runcheck",
	Short: "Runcheck - compile and run code files with a time limit",
	Long: `Runcheck compiles and runs a source file (Python, C, C++ or Java),
enforces a wall-clock time limit on both phases, and reports status,
runtime and captured output. Every run is recorded in a local history.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&codeDirFlag, "code-dir", "", "Code folder (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeLimitFlag, "time-limit", 0, "Wall-clock limit per compile/run phase (overrides config)")
}

// loadRuntime builds the config and runner shared by all commands,
// applying flag overrides.
func loadRuntime() (*config.Config, *runner.Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if codeDirFlag != "" {
		cfg.CodeDir = codeDirFlag
	}
	if timeLimitFlag > 0 {
		cfg.TimeLimit = timeLimitFlag
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = runner.DefaultTimeLimit
	}

	r := runner.New()
	if cfg.LanguagesFile != "" {
		chains, err := runner.LoadToolchains(cfg.LanguagesFile)
		if err != nil {
			return nil, nil, err
		}
		r = runner.NewWithToolchains(chains)
	}
	return cfg, r, nil
}

// openStore opens the run history database. Callers treat a nil store
// as "history disabled".
func openStore(cfg *config.Config) storage.Store {
	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return nil
	}
	return store
}

// recordRun saves a result to history, best-effort.
func recordRun(store storage.Store, fileName string, res runner.Result) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	run := &storage.Run{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Language:  res.Language,
		Status:    res.Status,
		RuntimeMS: res.RuntimeMS,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run: %v\n", err)
	}
}

// printResult renders one execution result for the terminal.
func printResult(res runner.Result) {
	fmt.Printf("Status: %s\n", res.Status)
	fmt.Printf("Language: %s\n", res.Language)
	fmt.Printf("Runtime: %.2f ms\n", res.RuntimeMS)
	fmt.Printf("Output:\n%s\n", res.Stdout)
	if res.Stderr != "" {
		fmt.Printf("Error:\n%s\n", res.Stderr)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
