package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "concepts", cfg.ConceptsDir)
	require.Equal(t, filepath.Join("concepts", "categories.json"), cfg.CategoriesFile)
	require.Equal(t, filepath.Join(".conceptdb", "concepts.db"), cfg.SnapshotPath)
	require.Equal(t, 70, cfg.Threshold)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "concepts_dir: notes\nthreshold: 85\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conceptdb.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "notes", cfg.ConceptsDir)
	require.Equal(t, 85, cfg.Threshold)
	// Unset keys keep defaults.
	require.Equal(t, filepath.Join(".conceptdb", "concepts.db"), cfg.SnapshotPath)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("CONCEPTDB_THRESHOLD", "90")
	t.Setenv("CONCEPTDB_CONCEPTS_DIR", "vault")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90, cfg.Threshold)
	require.Equal(t, "vault", cfg.ConceptsDir)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
