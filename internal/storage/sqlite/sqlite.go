// Package sqlite implements the relational snapshot of the concept file
// store. The snapshot is the fast query side (alias and URL lookups,
// cross-reference scans) and is rebuilt or resynced from the file store,
// never edited directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pkmforge/conceptdb/internal/textutil"
	"github.com/pkmforge/conceptdb/internal/types"
)

// SnapshotStore implements the storage.Store interface using SQLite.
type SnapshotStore struct {
	db   *sql.DB
	path string
}

// New creates (or opens) a read-write snapshot at path and applies the
// schema. Used by init-store; missing parent directories are created.
func New(path string) (*SnapshotStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	// The file: prefix is required for the driver to hand mode= and
	// other URI params through to SQLite.
	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping snapshot: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SnapshotStore{db: db, path: path}, nil
}

// Open opens an existing snapshot. Returns types.StorageError when the
// snapshot file does not exist yet. Read-only mode is used for scan-style
// operations that must not take a write lock.
func Open(path string, readOnly bool) (*SnapshotStore, error) {
	if path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &types.StorageError{Path: path, Hint: "run init-store first"}
		}
	}

	dsn := "file:" + path + "?_foreign_keys=ON"
	if readOnly {
		// Journal mode is a persistent property of the database file;
		// a read-only handle must not issue the WAL pragma.
		dsn += "&mode=ro"
	} else {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping snapshot: %w", err)
	}

	return &SnapshotStore{db: db, path: path}, nil
}

// SyncReport summarizes a resync run. Orphans are snapshot record IDs
// with no corresponding file; they are reported, never deleted (orphan
// removal is a human decision).
type SyncReport struct {
	Added     int
	Updated   int
	Unchanged int
	Orphans   []string
}

// DuplicateCheck is one append-only verification audit entry.
type DuplicateCheck struct {
	ID         string
	Name       string
	Summary    string
	MatchCount int
	Breakdown  string // serialized per-match score/reason list
	Action     string // "rejected" or "pending"
	CreatedAt  time.Time
}

// Init wipes the snapshot and rebuilds it from the given records in a
// single transaction. The audit log survives a rebuild.
func (s *SnapshotStore) Init(ctx context.Context, records []*types.ConceptRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	for _, rec := range records {
		if err := insertRecordTx(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Resync reconciles the snapshot against the given file-store records:
// insert if new, replace if the content hash differs, skip if identical.
// The whole pass runs in one transaction so partial writes are never
// visible to a concurrent reader. Idempotent: a second run with no file
// changes reports 0 added and 0 updated.
func (s *SnapshotStore) Resync(ctx context.Context, records []*types.ConceptRecord) (*SyncReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stored := map[string]string{}
	rows, err := tx.QueryContext(ctx, `SELECT id, content_hash FROM records`)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored hashes: %w", err)
	}
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stored hash: %w", err)
		}
		stored[id] = hash
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stored hashes: %w", err)
	}

	report := &SyncReport{}
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.ID] = struct{}{}
		hash, exists := stored[rec.ID]
		switch {
		case !exists:
			if err := insertRecordTx(ctx, tx, rec); err != nil {
				return nil, err
			}
			report.Added++
		case hash != rec.ContentHash():
			// Replace: delete cascades to the auxiliary tables.
			if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, rec.ID); err != nil {
				return nil, fmt.Errorf("failed to replace record %s: %w", rec.ID, err)
			}
			if err := insertRecordTx(ctx, tx, rec); err != nil {
				return nil, err
			}
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	for id := range stored {
		if _, ok := seen[id]; !ok {
			report.Orphans = append(report.Orphans, id)
		}
	}
	sort.Strings(report.Orphans)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resync: %w", err)
	}
	return report, nil
}

// DeleteRecord removes a record and all its auxiliary rows atomically.
func (s *SnapshotStore) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &types.NotFoundError{ID: id}
	}
	return nil
}

// GetRecord retrieves a record by ID, or nil when absent.
func (s *SnapshotStore) GetRecord(ctx context.Context, id string) (*types.ConceptRecord, error) {
	rec, err := s.scanRecordRow(s.db.QueryRowContext(ctx, `
		SELECT id, name, summary, explanation, category, featured, icon,
		       date_published, date_modified
		FROM records
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if err := s.loadCollections(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecords returns the full corpus ordered by ID.
func (s *SnapshotStore) ListRecords(ctx context.Context) ([]*types.ConceptRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, summary, explanation, category, featured, icon,
		       date_published, date_modified
		FROM records
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*types.ConceptRecord
	byID := map[string]*types.ConceptRecord{}
	for rows.Next() {
		rec, err := s.scanRecordRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	if err := s.loadAllCollections(ctx, byID); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByAlias returns IDs of records carrying the given normalized alias.
func (s *SnapshotStore) FindByAlias(ctx context.Context, normalizedAlias string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT DISTINCT record_id FROM aliases
		WHERE normalized_alias = ?
		ORDER BY record_id
	`, normalizedAlias)
}

// FindByName returns IDs of records whose normalized name equals the input.
func (s *SnapshotStore) FindByName(ctx context.Context, normalizedName string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT id FROM records
		WHERE normalized_name = ?
		ORDER BY id
	`, normalizedName)
}

// FindByRelatedNote returns IDs of records linking the exact URL.
func (s *SnapshotStore) FindByRelatedNote(ctx context.Context, url string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT DISTINCT record_id FROM related_notes
		WHERE url = ?
		ORDER BY record_id
	`, url)
}

// FindReferencing returns IDs of records whose relatedConcepts list
// contains the given ID.
func (s *SnapshotStore) FindReferencing(ctx context.Context, id string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT DISTINCT record_id FROM related_concepts
		WHERE related_id = ?
		ORDER BY record_id
	`, id)
}

// LogDuplicateCheck appends a verification audit entry.
func (s *SnapshotStore) LogDuplicateCheck(ctx context.Context, check *DuplicateCheck) error {
	if check.ID == "" {
		check.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicate_checks (id, name, summary, match_count, breakdown, action)
		VALUES (?, ?, ?, ?, ?, ?)
	`, check.ID, check.Name, check.Summary, check.MatchCount, check.Breakdown, check.Action)
	if err != nil {
		return fmt.Errorf("failed to log duplicate check: %w", err)
	}
	return nil
}

// ListDuplicateChecks returns the most recent verification audit entries,
// newest first.
func (s *SnapshotStore) ListDuplicateChecks(ctx context.Context, limit int) ([]*DuplicateCheck, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, summary, match_count, breakdown, action, created_at
		FROM duplicate_checks
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate checks: %w", err)
	}
	defer rows.Close()

	var checks []*DuplicateCheck
	for rows.Next() {
		var check DuplicateCheck
		if err := rows.Scan(&check.ID, &check.Name, &check.Summary,
			&check.MatchCount, &check.Breakdown, &check.Action, &check.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate check: %w", err)
		}
		checks = append(checks, &check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duplicate checks: %w", err)
	}
	return checks, nil
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SnapshotStore) scanRecordRow(row rowScanner) (*types.ConceptRecord, error) {
	var rec types.ConceptRecord
	var featured int
	if err := row.Scan(
		&rec.ID, &rec.Name, &rec.Summary, &rec.Explanation, &rec.Category,
		&featured, &rec.Icon, &rec.DatePublished, &rec.DateModified,
	); err != nil {
		return nil, err
	}
	rec.Featured = featured != 0
	return &rec, nil
}

func (s *SnapshotStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ids: %w", err)
	}
	return ids, nil
}

func insertRecordTx(ctx context.Context, tx *sql.Tx, rec *types.ConceptRecord) error {
	featured := 0
	if rec.Featured {
		featured = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO records (
			id, name, normalized_name, summary, explanation, category,
			featured, icon, date_published, date_modified, content_hash, source_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Name, textutil.Normalize(rec.Name), rec.Summary,
		rec.Explanation, rec.Category, featured, rec.Icon,
		rec.DatePublished, rec.DateModified, rec.ContentHash(), rec.ID+".json",
	)
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
	}

	for _, alias := range rec.Aliases {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO aliases (record_id, alias, normalized_alias)
			VALUES (?, ?, ?)
		`, rec.ID, alias, textutil.Normalize(alias)); err != nil {
			return fmt.Errorf("failed to insert alias for %s: %w", rec.ID, err)
		}
	}
	for _, tag := range rec.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO tags (record_id, tag) VALUES (?, ?)
		`, rec.ID, tag); err != nil {
			return fmt.Errorf("failed to insert tag for %s: %w", rec.ID, err)
		}
	}
	for i, related := range rec.RelatedConcepts {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO related_concepts (record_id, related_id, position)
			VALUES (?, ?, ?)
		`, rec.ID, related, i); err != nil {
			return fmt.Errorf("failed to insert related concept for %s: %w", rec.ID, err)
		}
	}
	for i, url := range rec.RelatedNotes {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO related_notes (record_id, url, position)
			VALUES (?, ?, ?)
		`, rec.ID, url, i); err != nil {
			return fmt.Errorf("failed to insert related note for %s: %w", rec.ID, err)
		}
	}

	refLists := []struct {
		kind types.ReferenceKind
		refs []types.Reference
	}{
		{types.KindArticle, rec.Articles},
		{types.KindBook, rec.Books},
		{types.KindReference, rec.References},
		{types.KindTutorial, rec.Tutorials},
	}
	for _, list := range refLists {
		for i, ref := range list.refs {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO refs (record_id, kind, title, url, ref_type, position)
				VALUES (?, ?, ?, ?, ?, ?)
			`, rec.ID, string(list.kind), ref.Title, ref.URL, ref.Type, i); err != nil {
				return fmt.Errorf("failed to insert %s reference for %s: %w", list.kind, rec.ID, err)
			}
		}
	}
	return nil
}
