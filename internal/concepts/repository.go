// Package concepts reads and writes the file-based content store: one
// JSON file per concept record plus an ordered category label list. The
// file store is the system of record; the relational snapshot mirrors it.
package concepts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkmforge/conceptdb/internal/types"
)

// Repository is a file-backed concept store rooted at Dir. It is
// constructed once per CLI invocation and passed by handle; there is no
// ambient singleton.
type Repository struct {
	Dir            string
	CategoriesPath string
}

// NewRepository creates a repository over the given concepts directory
// and categories file.
func NewRepository(dir, categoriesPath string) *Repository {
	return &Repository{Dir: dir, CategoriesPath: categoriesPath}
}

// SkippedFile records a content file that failed to parse during LoadAll.
type SkippedFile struct {
	Path string
	Err  error
}

// LoadReport carries the non-fatal findings from a corpus load.
type LoadReport struct {
	Skipped  []SkippedFile
	Warnings []types.ValidationWarning
}

// LoadAll reads every record in the store. Files that fail to parse are
// skipped and reported, not fatal. Validation warnings (id/filename
// mismatch, unknown category, dangling relatedConcepts) are collected in
// the report. Records are returned sorted by ID for deterministic
// downstream iteration.
func (r *Repository) LoadAll() ([]*types.ConceptRecord, *LoadReport, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read concepts directory %s: %w", r.Dir, err)
	}

	categories, _ := r.Categories() // optional; absence is not an error

	report := &LoadReport{}
	var records []*types.ConceptRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(r.Dir, entry.Name())
		if filepath.Clean(path) == filepath.Clean(r.CategoriesPath) {
			continue
		}

		rec, err := readRecord(path)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedFile{Path: path, Err: err})
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".json")
		if rec.ID != base {
			report.Warnings = append(report.Warnings, types.ValidationWarning{
				RecordID: rec.ID,
				Field:    "id",
				Message:  fmt.Sprintf("does not match filename %q", entry.Name()),
			})
		}
		if len(categories) > 0 && rec.Category != "" && !contains(categories, rec.Category) {
			report.Warnings = append(report.Warnings, types.ValidationWarning{
				RecordID: rec.ID,
				Field:    "category",
				Message:  fmt.Sprintf("%q is not a known category", rec.Category),
			})
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	// Dangling relatedConcepts references need the full corpus in hand.
	known := make(map[string]struct{}, len(records))
	for _, rec := range records {
		known[rec.ID] = struct{}{}
	}
	for _, rec := range records {
		for _, ref := range rec.RelatedConcepts {
			if _, ok := known[ref]; !ok {
				report.Warnings = append(report.Warnings, types.ValidationWarning{
					RecordID: rec.ID,
					Field:    "relatedConcepts",
					Message:  fmt.Sprintf("references missing concept %q", ref),
				})
			}
		}
	}

	return records, report, nil
}

// Load reads a single record by ID. Returns types.NotFoundError when the
// file does not exist.
func (r *Repository) Load(id string) (*types.ConceptRecord, error) {
	path := r.Path(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &types.NotFoundError{ID: id}
	}
	return readRecord(path)
}

// Save writes a record to its file atomically (temp file + rename).
func (r *Repository) Save(rec *types.ConceptRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal concept %s: %w", rec.ID, err)
	}
	data = append(data, '\n')
	return writeFileAtomic(r.Path(rec.ID), data, 0644)
}

// Delete removes a record's file. Returns types.NotFoundError when the
// file does not exist.
func (r *Repository) Delete(id string) error {
	err := os.Remove(r.Path(id))
	if os.IsNotExist(err) {
		return &types.NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to delete concept %s: %w", id, err)
	}
	return nil
}

// Categories reads the ordered list of valid category labels.
func (r *Repository) Categories() ([]string, error) {
	data, err := os.ReadFile(r.CategoriesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, &types.ParseError{Path: r.CategoriesPath, Err: err}
	}
	return categories, nil
}

// Path returns the file path backing a record ID.
func (r *Repository) Path(id string) string {
	return filepath.Join(r.Dir, id+".json")
}

func readRecord(path string) (*types.ConceptRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var rec types.ConceptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &types.ParseError{Path: path, Err: err}
	}
	if err := rec.Validate(); err != nil {
		return nil, &types.ParseError{Path: path, Err: err}
	}
	return &rec, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
