package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Show supported languages and toolchain availability",
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	_, r, err := loadRuntime()
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-28s %s\n", "LANG", "TOOLS", "AVAILABLE")
	for _, info := range r.ToolInfo() {
		avail := "yes"
		if !info.Available {
			avail = "no (not on PATH)"
		}
		fmt.Printf("%-8s %-28s %s\n", info.Language, strings.Join(info.Tools, ", "), avail)
	}
	return nil
}
