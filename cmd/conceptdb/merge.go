package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkmforge/conceptdb/internal/resolver"
)

var (
	mergeSource   string
	mergeTarget   string
	mergeStrategy string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a duplicate concept into its canonical record",
	Long: `Merge the source concept into the target concept and delete the source.

Strategies:
  merge-fields  keep the target's singular fields, union collections
                from both records (default)
  keep-target   keep the target exactly as-is, just retire the source

Sibling records that reference the source are rewritten to reference
the target. The source is removed from both the file store and the
snapshot; surviving records in the snapshot go stale, so run resync
afterwards.

Example:
  conceptdb merge --source habit-cycle --target habit-loop
  conceptdb merge --source habit-cycle --target habit-loop --strategy keep-target`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := openSnapshot(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		engine := resolver.NewEngine(openRepository(), store)
		result, err := engine.Merge(ctx, mergeSource, mergeTarget, resolver.Strategy(mergeStrategy))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Merged %s into %s\n\n", green("✓"), cyan(mergeSource), cyan(mergeTarget))
		if len(result.RewrittenSiblings) > 0 {
			fmt.Printf("  Rewrote references in:\n")
			for _, id := range result.RewrittenSiblings {
				fmt.Printf("    %s\n", cyan(id))
			}
		}
		for _, w := range result.Warnings {
			fmt.Printf("  %s %s\n", yellow("!"), w)
		}
		fmt.Printf("\n  %s\n\n", gray("Run 'conceptdb resync' to refresh the snapshot."))
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeSource, "source", "", "ID of the duplicate record to retire (required)")
	mergeCmd.Flags().StringVar(&mergeTarget, "target", "", "ID of the canonical record to keep (required)")
	mergeCmd.Flags().StringVar(&mergeStrategy, "strategy", string(resolver.StrategyMergeFields), "merge strategy: merge-fields or keep-target")
	_ = mergeCmd.MarkFlagRequired("source")
	_ = mergeCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(mergeCmd)
}
