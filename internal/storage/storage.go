// Package storage defines the Record Store contract over the relational
// snapshot. The snapshot mirrors the file-based content store for fast
// structural queries; the file store remains the system of record.
package storage

import (
	"context"

	"github.com/pkmforge/conceptdb/internal/storage/sqlite"
	"github.com/pkmforge/conceptdb/internal/types"
)

// Store is the interface for snapshot backends.
type Store interface {
	// Snapshot lifecycle
	Init(ctx context.Context, records []*types.ConceptRecord) error
	Resync(ctx context.Context, records []*types.ConceptRecord) (*sqlite.SyncReport, error)
	DeleteRecord(ctx context.Context, id string) error

	// Lookups
	GetRecord(ctx context.Context, id string) (*types.ConceptRecord, error)
	ListRecords(ctx context.Context) ([]*types.ConceptRecord, error)
	FindByAlias(ctx context.Context, normalizedAlias string) ([]string, error)
	FindByName(ctx context.Context, normalizedName string) ([]string, error)
	FindByRelatedNote(ctx context.Context, url string) ([]string, error)
	FindReferencing(ctx context.Context, id string) ([]string, error)

	// Verification audit log
	LogDuplicateCheck(ctx context.Context, check *sqlite.DuplicateCheck) error
	ListDuplicateChecks(ctx context.Context, limit int) ([]*sqlite.DuplicateCheck, error)

	// Lifecycle
	Close() error
}

// Config holds snapshot configuration.
type Config struct {
	// Path is the SQLite snapshot file path.
	// Special value ":memory:" creates an in-memory snapshot (useful for tests).
	Path string
}

// DefaultConfig returns a config with the standard snapshot location.
func DefaultConfig() *Config {
	return &Config{Path: ".conceptdb/concepts.db"}
}

// NewStore creates (or recreates the schema of) a read-write snapshot.
func NewStore(cfg *Config) (Store, error) {
	return sqlite.New(cfg.Path)
}

// OpenStore opens an existing snapshot; it fails with types.StorageError
// when the snapshot has not been initialized. Read-only opens are used
// for scanning so no write lock is held across a batch run.
func OpenStore(cfg *Config, readOnly bool) (Store, error) {
	return sqlite.Open(cfg.Path, readOnly)
}
