package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent verification checks",
	Long: `List recent entries from the verification audit log, newest first.

Every 'conceptdb verify' run is recorded, including clean passes, so
the log answers "has this name been checked before?".`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := openSnapshot(true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		checks, err := store.ListDuplicateChecks(ctx, auditLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read audit log: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Verification Audit Log ==="))
		if len(checks) == 0 {
			fmt.Printf("  %s\n\n", gray("No checks recorded"))
			return
		}
		for _, check := range checks {
			verdict := green(check.Action)
			if check.Action == "rejected" {
				verdict = red(check.Action)
			}
			fmt.Printf("  %s  %-30s %s (%d match(es))\n",
				gray(check.CreatedAt.Format("2006-01-02 15:04")),
				check.Name, verdict, check.MatchCount)
		}
		fmt.Println()
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0, "show at most this many entries (0 = default 50)")
	rootCmd.AddCommand(auditCmd)
}
