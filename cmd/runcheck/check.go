package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/runcheck/internal/codedir"
	"github.com/michaelbrown/runcheck/internal/runner"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Interactively pick and run files from the code folder",
	Long: `Open an interactive session against the check_code folder: list the
runnable files, pick one by name or number, optionally provide input,
and see the result. The loop repeats until you exit.

Examples:
  runcheck check
  runcheck check --code-dir ~/work/check_code --time-limit 5s`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, r, err := loadRuntime()
	if err != nil {
		return err
	}

	dir, err := codedir.Resolve(cfg.CodeDir)
	if err != nil {
		return err
	}
	fmt.Printf("Using code folder: %s\n", dir)

	// Persist the resolved folder so the next session reuses it.
	cfg.CodeDir = dir
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving config: %v\n", err)
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "file> ",
		HistoryFile:     filepath.Join(os.TempDir(), "runcheck_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Ctrl+C during a run cancels that run, not the whole session.
	var runCancel context.CancelFunc
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			if runCancel != nil {
				runCancel()
			}
		}
	}()

	for {
		files, err := codedir.List(dir)
		if err != nil {
			return err
		}

		if len(files) == 0 {
			fmt.Printf("\nNo supported code files found in %s.\n", dir)
			fmt.Printf("Place files with one of these extensions inside: %s\n", strings.Join(runner.Extensions(), ", "))
			fmt.Println("Press enter to rescan, or Ctrl+D to exit.")
			if _, err := rl.Readline(); err != nil {
				fmt.Println("Goodbye!")
				return nil
			}
			continue
		}

		fmt.Printf("\nFound the following code files in %s:\n", dir)
		for i, name := range files {
			fmt.Printf("  %d. %s\n", i+1, name)
		}

		rl.SetPrompt("file> ")
		selection, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}
		selection = strings.TrimSpace(selection)
		if selection == "" {
			continue
		}

		// Accept a list number as well as a file name.
		if n, convErr := strconv.Atoi(selection); convErr == nil && n >= 1 && n <= len(files) {
			selection = files[n-1]
		}
		if !containsString(files, selection) {
			fmt.Printf("%q is not in the list. Pick a listed file name or number.\n", selection)
			continue
		}

		req := runner.Request{
			SourcePath: filepath.Join(dir, selection),
			TimeLimit:  cfg.TimeLimit,
		}

		if promptYes(rl, "does this code require input? (yes/no) ") {
			rl.SetPrompt("input> ")
			line, err := rl.Readline()
			if err != nil {
				fmt.Println("Goodbye!")
				return nil
			}
			req.Input = strings.ReplaceAll(line, `\n`, "\n")
			req.HasInput = true
		}

		runCtx, cancel := context.WithCancel(context.Background())
		runCancel = cancel

		fmt.Printf("\n--- Running %s ---\n", selection)
		res := r.Execute(runCtx, req)
		cancel()
		runCancel = nil

		printResult(res)
		recordRun(store, selection, res)
		fmt.Println(strings.Repeat("=", 50))
	}
}

func promptYes(rl *readline.Instance, prompt string) bool {
	rl.SetPrompt(prompt)
	for {
		answer, err := rl.Readline()
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes", "y":
			return true
		case "no", "n", "":
			return false
		default:
			fmt.Println("Please answer yes or no.")
		}
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
