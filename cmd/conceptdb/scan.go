package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkmforge/conceptdb/internal/scorer"
)

var (
	scanThreshold int
	scanFormat    string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the whole collection for likely duplicate pairs",
	Long: `Score every pair of concept records and report pairs at or above the
retention threshold, grouped by confidence:

  HIGH    score >= 90   near-certain duplicates
  MEDIUM  70 <= s < 90  review recommended
  LOW     below 70      only shown when --threshold is set below 70

The scan is advisory and read-only: nothing is merged or deleted.
Exit code is 0 whether or not duplicates are found.

Example:
  conceptdb scan
  conceptdb scan --threshold 85
  conceptdb scan --format yaml > duplicates.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if !cmd.Flags().Changed("threshold") {
			scanThreshold = cfg.Threshold
		}

		store, err := openSnapshot(true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		records, err := store.ListRecords(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list records: %v\n", err)
			os.Exit(1)
		}

		report := scorer.ScanDuplicates(records, scanThreshold)

		switch scanFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(report); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			_ = enc.Close()
		case "text":
			printScanReport(report, len(records))
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown format %q (want text, yaml, or json)\n", scanFormat)
			os.Exit(1)
		}
	},
}

func printScanReport(report *scorer.ScanReport, total int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Duplicate Scan ==="))
	fmt.Printf("  Records:   %d\n", total)
	fmt.Printf("  Threshold: %d\n", report.Threshold)
	fmt.Println()

	if len(report.Pairs) == 0 {
		fmt.Printf("  %s No likely duplicates found\n\n", green("✓"))
		return
	}

	groups := []struct {
		label string
		tint  func(a ...interface{}) string
		pairs []scorer.Pair
	}{
		{"HIGH", red, report.High},
		{"MEDIUM", yellow, report.Medium},
		{"LOW", gray, report.Low},
	}
	for _, g := range groups {
		if len(g.pairs) == 0 {
			continue
		}
		fmt.Printf("%s\n", g.tint(fmt.Sprintf("%s (%d):", g.label, len(g.pairs))))
		for _, p := range g.pairs {
			fmt.Printf("  %s  %s ↔ %s\n", g.tint(fmt.Sprintf("%3d", p.Score)), p.IDA, p.IDB)
			fmt.Printf("       %s\n", gray(strings.Join(p.Reasons, "; ")))
		}
		fmt.Println()
	}
	fmt.Printf("  Total: %d pair(s)\n\n", len(report.Pairs))
}

func init() {
	scanCmd.Flags().IntVar(&scanThreshold, "threshold", scorer.DefaultThreshold, "minimum score to report a pair")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "output format: text, yaml, or json")
	rootCmd.AddCommand(scanCmd)
}
