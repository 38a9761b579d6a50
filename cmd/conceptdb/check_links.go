package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pkmforge/conceptdb/internal/linkcheck"
	"github.com/pkmforge/conceptdb/internal/types"
)

var checkLinksLimit int

var checkLinksCmd = &cobra.Command{
	Use:   "check-links",
	Short: "Check the external links referenced by the collection",
	Long: `Probe every distinct URL referenced by the collection: related note
links plus article, book, reference, and tutorial links. Requests are
rate-limited and sequential.

The report is advisory; exit code is 0 even when broken links are
found.

Example:
  conceptdb check-links
  conceptdb check-links --limit 20`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

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

		urls := collectURLs(records)
		if checkLinksLimit > 0 && len(urls) > checkLinksLimit {
			urls = urls[:checkLinksLimit]
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Checking %d link(s) ===", len(urls))))

		results := linkcheck.New().CheckAll(ctx, urls)

		var broken, unknown int
		for _, res := range results {
			switch res.Status {
			case linkcheck.StatusOK:
				fmt.Printf("  %s %s\n", green("✓"), res.URL)
			case linkcheck.StatusBroken:
				broken++
				fmt.Printf("  %s %s (%s)\n", red("✗"), res.URL, res.Detail)
			default:
				unknown++
				fmt.Printf("  %s %s (%s)\n", yellow("?"), res.URL, res.Detail)
			}
		}

		fmt.Printf("\n  %d ok, %d broken, %d unreachable\n\n",
			len(results)-broken-unknown, broken, unknown)
	},
}

// collectURLs gathers every distinct URL across all records, sorted for
// a stable check order.
func collectURLs(records []*types.ConceptRecord) []string {
	seen := make(map[string]struct{})
	add := func(url string) {
		if url != "" {
			seen[url] = struct{}{}
		}
	}
	for _, rec := range records {
		for _, url := range rec.RelatedNotes {
			add(url)
		}
		for _, refs := range [][]types.Reference{rec.Articles, rec.Books, rec.References, rec.Tutorials} {
			for _, ref := range refs {
				add(ref.URL)
			}
		}
	}
	urls := make([]string, 0, len(seen))
	for url := range seen {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

func init() {
	checkLinksCmd.Flags().IntVar(&checkLinksLimit, "limit", 0, "check at most this many links (0 = all)")
	rootCmd.AddCommand(checkLinksCmd)
}
