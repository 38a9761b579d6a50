package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkmforge/conceptdb/internal/scorer"
)

var (
	verifyName         string
	verifySummary      string
	verifyAliases      []string
	verifyRelatedNotes []string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a candidate concept against the collection before adding it",
	Long: `Score a candidate concept against every stored record and report the
matches with an advisory recommendation. Every verification is appended
to the audit log in the snapshot, including clean passes.

Exit code is 1 when the top match scores 90 or above (near-certain
duplicate), 0 otherwise.

Example:
  conceptdb verify --name "Habit Formation"
  conceptdb verify --name "Spaced Repetition" \
    --summary "Reviewing material at increasing intervals" \
    --aliases "SRS,Spacing Effect" \
    --related-notes "https://notes.example.com/spacing"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Verification writes an audit entry, so the snapshot is
		// opened read-write.
		store, err := openSnapshot(false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		cand := scorer.Candidate{
			Name:         verifyName,
			Summary:      verifySummary,
			Aliases:      splitCSV(verifyAliases),
			RelatedNotes: splitCSV(verifyRelatedNotes),
		}
		result, err := scorer.VerifyCandidate(ctx, store, cand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Verify: %s ===", verifyName)))

		for _, m := range result.Matches {
			tint := yellow
			if m.Score >= 90 {
				tint = red
			}
			fmt.Printf("  %s  %s (%s)\n", tint(fmt.Sprintf("%3d", m.Score)), m.Name, m.ID)
			fmt.Printf("       %s\n", gray(strings.Join(m.Reasons, "; ")))
		}
		if len(result.Matches) == 0 {
			fmt.Printf("  %s\n", gray("No matches"))
		}
		fmt.Println()

		verdict := green
		if result.TopScore >= 90 {
			verdict = red
		} else if len(result.Matches) > 0 {
			verdict = yellow
		}
		fmt.Printf("  Recommendation: %s\n\n", verdict(string(result.Recommendation)))

		if result.TopScore >= 90 {
			os.Exit(1)
		}
	},
}

// splitCSV flattens repeated flags and comma-separated values into one
// trimmed list.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func init() {
	verifyCmd.Flags().StringVar(&verifyName, "name", "", "candidate concept name (required)")
	verifyCmd.Flags().StringVar(&verifySummary, "summary", "", "candidate summary text")
	verifyCmd.Flags().StringSliceVar(&verifyAliases, "aliases", nil, "candidate aliases (comma-separated)")
	verifyCmd.Flags().StringSliceVar(&verifyRelatedNotes, "related-notes", nil, "candidate related note URLs (comma-separated)")
	_ = verifyCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(verifyCmd)
}
