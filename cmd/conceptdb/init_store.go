package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkmforge/conceptdb/internal/storage"
)

var initStoreCmd = &cobra.Command{
	Use:   "init-store",
	Short: "Build the SQLite snapshot from the concept files",
	Long: `Build (or rebuild) the SQLite snapshot from the JSON content store.

The snapshot is rebuilt from scratch: existing snapshot contents are
discarded and every record on disk is loaded fresh. Files that fail to
parse are skipped and reported; validation warnings do not stop the
build.

Example:
  conceptdb init-store
  conceptdb init-store --concepts-dir notes --db /tmp/notes.db`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		repo := openRepository()
		records, report, err := repo.LoadAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store, err := storage.NewStore(&storage.Config{Path: cfg.SnapshotPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create snapshot: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := store.Init(ctx, records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to populate snapshot: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Snapshot initialized\n\n", green("✓"))
		fmt.Printf("  Records:  %s\n", cyan(fmt.Sprintf("%d", len(records))))
		fmt.Printf("  Snapshot: %s\n", cyan(cfg.SnapshotPath))

		for _, skip := range report.Skipped {
			fmt.Printf("  %s skipped %s: %v\n", yellow("!"), skip.Path, skip.Err)
		}
		for _, w := range report.Warnings {
			fmt.Printf("  %s %s: %s %s\n", gray("•"), w.RecordID, w.Field, w.Message)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(initStoreCmd)
}
