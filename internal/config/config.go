// Package config resolves tool configuration from defaults, an optional
// conceptdb.yaml in the working directory, and CONCEPTDB_* environment
// variables (in increasing precedence).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the paths and defaults shared by every subcommand.
type Config struct {
	// ConceptsDir is the directory of per-record JSON files.
	ConceptsDir string
	// CategoriesFile holds the ordered list of valid category labels.
	CategoriesFile string
	// SnapshotPath is the SQLite snapshot location.
	SnapshotPath string
	// Threshold is the default batch-scan retention threshold.
	Threshold int
}

// Load reads the configuration. A missing config file is not an error;
// defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("concepts_dir", "concepts")
	v.SetDefault("categories_file", filepath.Join("concepts", "categories.json"))
	v.SetDefault("snapshot_path", filepath.Join(".conceptdb", "concepts.db"))
	v.SetDefault("threshold", 70)

	v.SetConfigName("conceptdb")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONCEPTDB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		ConceptsDir:    v.GetString("concepts_dir"),
		CategoriesFile: v.GetString("categories_file"),
		SnapshotPath:   v.GetString("snapshot_path"),
		Threshold:      v.GetInt("threshold"),
	}, nil
}
