package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/runcheck/internal/runner"
)

var (
	stdinFlag     string
	stdinFileFlag string
	noHistoryFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and run a single source file",
	Long: `Compile (if needed) and run one source file, then print status,
runtime and captured output.

Examples:
  runcheck run check_code/solution.py
  runcheck run main.c --time-limit 2s --stdin 'hello\nworld'
  runcheck run Main.java --stdin-file input.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&stdinFlag, "stdin", "", `Standard input for the program (\n expands to a newline)`)
	runCmd.Flags().StringVar(&stdinFileFlag, "stdin-file", "", "Read standard input for the program from a file")
	runCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record this run in history")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, r, err := loadRuntime()
	if err != nil {
		return err
	}

	req := runner.Request{
		SourcePath: args[0],
		TimeLimit:  cfg.TimeLimit,
	}

	switch {
	case stdinFileFlag != "":
		data, err := os.ReadFile(stdinFileFlag)
		if err != nil {
			return fmt.Errorf("reading stdin file: %w", err)
		}
		req.Input = string(data)
		req.HasInput = true
	case cmd.Flags().Changed("stdin"):
		req.Input = strings.ReplaceAll(stdinFlag, `\n`, "\n")
		req.HasInput = true
	}

	// Ctrl+C aborts the running program instead of leaving it behind.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := r.Execute(ctx, req)
	printResult(res)

	if !noHistoryFlag {
		store := openStore(cfg)
		if store != nil {
			defer store.Close()
			recordRun(store, filepath.Base(args[0]), res)
		}
	}

	if !res.OK() {
		return fmt.Errorf("run finished with status %s", res.Status)
	}
	return nil
}
