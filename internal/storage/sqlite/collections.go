package sqlite

import (
	"context"
	"fmt"

	"github.com/pkmforge/conceptdb/internal/types"
)

// loadCollections fills the auxiliary collections for a single record.
func (s *SnapshotStore) loadCollections(ctx context.Context, rec *types.ConceptRecord) error {
	return s.loadAllCollections(ctx, map[string]*types.ConceptRecord{rec.ID: rec})
}

// loadAllCollections bulk-loads every auxiliary table and distributes the
// rows onto the given records. Positions preserve each record's original
// list order.
func (s *SnapshotStore) loadAllCollections(ctx context.Context, byID map[string]*types.ConceptRecord) error {
	if len(byID) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT record_id, alias FROM aliases ORDER BY record_id, alias`)
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}
	for rows.Next() {
		var id, alias string
		if err := rows.Scan(&id, &alias); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan alias: %w", err)
		}
		if rec, ok := byID[id]; ok {
			rec.Aliases = append(rec.Aliases, alias)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate aliases: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT record_id, tag FROM tags ORDER BY record_id, tag`)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if rec, ok := byID[id]; ok {
			rec.Tags = append(rec.Tags, tag)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate tags: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT record_id, related_id FROM related_concepts ORDER BY record_id, position`)
	if err != nil {
		return fmt.Errorf("failed to load related concepts: %w", err)
	}
	for rows.Next() {
		var id, related string
		if err := rows.Scan(&id, &related); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan related concept: %w", err)
		}
		if rec, ok := byID[id]; ok {
			rec.RelatedConcepts = append(rec.RelatedConcepts, related)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate related concepts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT record_id, url FROM related_notes ORDER BY record_id, position`)
	if err != nil {
		return fmt.Errorf("failed to load related notes: %w", err)
	}
	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan related note: %w", err)
		}
		if rec, ok := byID[id]; ok {
			rec.RelatedNotes = append(rec.RelatedNotes, url)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate related notes: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT record_id, kind, title, url, ref_type FROM refs ORDER BY record_id, kind, position`)
	if err != nil {
		return fmt.Errorf("failed to load references: %w", err)
	}
	for rows.Next() {
		var id, kind, title, url, refType string
		if err := rows.Scan(&id, &kind, &title, &url, &refType); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan reference: %w", err)
		}
		rec, ok := byID[id]
		if !ok {
			continue
		}
		ref := types.Reference{Title: title, URL: url, Type: refType}
		switch types.ReferenceKind(kind) {
		case types.KindArticle:
			rec.Articles = append(rec.Articles, ref)
		case types.KindBook:
			rec.Books = append(rec.Books, ref)
		case types.KindReference:
			rec.References = append(rec.References, ref)
		case types.KindTutorial:
			rec.Tutorials = append(rec.Tutorials, ref)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate references: %w", err)
	}

	return nil
}
