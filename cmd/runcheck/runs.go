package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/runcheck/internal/runner"
	"github.com/michaelbrown/runcheck/internal/storage"
	"github.com/michaelbrown/runcheck/internal/storage/sqlite"
)

var (
	statusFilter string
	limitFlag    int
)

var runsCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"history"},
	Short:   "Browse recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's full output",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)

	runsListCmd.Flags().StringVar(&statusFilter, "status", "", `Filter by status (e.g. "Success", "Time Limit Exceeded")`)
	runsListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max runs to show")
}

func historyStore() (storage.Store, error) {
	cfg, _, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.Storage.DBPath)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := storage.RunListOptions{Limit: limitFlag}
	if statusFilter != "" {
		opts.Status = runner.Status(statusFilter)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runs, err := store.ListRuns(ctx, opts)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-10s %-20s %-8s %-22s %10s  %s\n", "ID", "FILE", "LANG", "STATUS", "RUNTIME", "WHEN")
	for _, run := range runs {
		fmt.Printf("%-10s %-20s %-8s %-22s %8.2fms  %s\n",
			run.ID[:8], truncate(run.FileName, 20), run.Language, run.Status,
			run.RuntimeMS, run.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID: %s\n", run.ID)
	fmt.Printf("File: %s\n", run.FileName)
	fmt.Printf("When: %s\n", run.CreatedAt.Local().Format(time.RFC1123))
	printResult(runner.Result{
		Status:    run.Status,
		Language:  run.Language,
		RuntimeMS: run.RuntimeMS,
		Stdout:    run.Stdout,
		Stderr:    run.Stderr,
		ExitCode:  run.ExitCode,
	})
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.DeleteRun(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
