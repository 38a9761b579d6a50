package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Refresh the snapshot from the concept files",
	Long: `Bring the SQLite snapshot up to date with the JSON content store.

Each record's content hash is compared against the snapshot: new records
are added, changed records are replaced, unchanged records are left
alone. Snapshot rows with no backing file are reported as orphans but
never deleted; rebuild with init-store to drop them.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		repo := openRepository()
		records, loadReport, err := repo.LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store, err := openSnapshot(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		report, err := store.Resync(ctx, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: resync failed: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Snapshot resynced\n\n", green("✓"))
		fmt.Printf("  Added:     %s\n", cyan(fmt.Sprintf("%d", report.Added)))
		fmt.Printf("  Updated:   %s\n", cyan(fmt.Sprintf("%d", report.Updated)))
		fmt.Printf("  Unchanged: %s\n", gray(fmt.Sprintf("%d", report.Unchanged)))

		if len(report.Orphans) > 0 {
			fmt.Printf("  Orphans:   %s\n", yellow(fmt.Sprintf("%d", len(report.Orphans))))
			for _, id := range report.Orphans {
				fmt.Printf("    %s %s (no backing file)\n", yellow("!"), id)
			}
		}
		for _, skip := range loadReport.Skipped {
			fmt.Printf("  %s skipped %s: %v\n", yellow("!"), skip.Path, skip.Err)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}
