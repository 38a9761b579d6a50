package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkmforge/conceptdb/internal/concepts"
	"github.com/pkmforge/conceptdb/internal/config"
	"github.com/pkmforge/conceptdb/internal/storage"
)

var (
	cfg *config.Config

	// Global flag overrides. Empty means "use config value".
	flagConceptsDir string
	flagDBPath      string
)

var rootCmd = &cobra.Command{
	Use:   "conceptdb",
	Short: "Duplicate detection and maintenance for a concept collection",
	Long: `conceptdb maintains a collection of concept records stored as JSON files.

It keeps a SQLite snapshot of the collection for fast structural queries,
detects likely duplicate concepts with a multi-signal scorer, verifies
candidate concepts before they are added, merges confirmed duplicates,
and checks external reference links.

Typical workflow:
  conceptdb init-store             # build the snapshot from the JSON files
  conceptdb scan                   # report likely duplicate pairs
  conceptdb verify --name "Habits" # check a candidate before adding it
  conceptdb merge --source a --target b
  conceptdb resync                 # refresh the snapshot after edits`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagConceptsDir != "" {
			cfg.ConceptsDir = flagConceptsDir
		}
		if flagDBPath != "" {
			cfg.SnapshotPath = flagDBPath
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConceptsDir, "concepts-dir", "", "directory of concept JSON files (default \"concepts\")")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "path to the SQLite snapshot (default \".conceptdb/concepts.db\")")
}

// openRepository builds the file repository from the resolved config.
func openRepository() *concepts.Repository {
	return &concepts.Repository{
		Dir:            cfg.ConceptsDir,
		CategoriesPath: cfg.CategoriesFile,
	}
}

// openSnapshot opens an existing snapshot. Commands that need the snapshot
// fail here with guidance when init-store has not been run.
func openSnapshot(readOnly bool) (storage.Store, error) {
	return storage.OpenStore(&storage.Config{Path: cfg.SnapshotPath}, readOnly)
}
