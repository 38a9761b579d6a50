// Package resolver merges a confirmed duplicate pair into one surviving
// record, rewrites cross-references in sibling records, and removes the
// superseded record from both the file store and the relational snapshot.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pkmforge/conceptdb/internal/concepts"
	"github.com/pkmforge/conceptdb/internal/storage"
	"github.com/pkmforge/conceptdb/internal/types"
)

// Strategy selects how the surviving record's fields are computed.
type Strategy string

const (
	// StrategyKeepTarget keeps the target record exactly as-is.
	StrategyKeepTarget Strategy = "keep-target"
	// StrategyMergeFields keeps the target's singular fields and unions
	// the collection fields of both records. This is the default.
	StrategyMergeFields Strategy = "merge-fields"
)

// IsValid checks if the strategy is one of the known policies.
func (s Strategy) IsValid() bool {
	return s == StrategyKeepTarget || s == StrategyMergeFields
}

// Engine performs merges against a file repository and its snapshot.
type Engine struct {
	repo  *concepts.Repository
	store storage.Store

	// now is swappable for tests; merges stamp dateModified with it.
	now func() time.Time
}

// NewEngine creates a resolution engine over the given repository and
// snapshot store.
func NewEngine(repo *concepts.Repository, store storage.Store) *Engine {
	return &Engine{repo: repo, store: store, now: time.Now}
}

// MergeResult reports what a merge produced. Warnings carry non-fatal
// sibling-rewrite failures; each sibling rewrite is independent and
// idempotent to retry, so they never abort the merge.
type MergeResult struct {
	Merged            *types.ConceptRecord
	RewrittenSiblings []string
	Warnings          []string
}

// Merge combines sourceID into targetID under the given strategy, then:
// rewrites sibling relatedConcepts references from source to target,
// deletes the source from the snapshot (cascading) and from the file
// store, and writes the merged record to the target's file. The snapshot
// is left stale for the surviving records; an explicit resync is the
// documented follow-up.
//
// Both IDs must resolve in the file store; otherwise Merge fails with
// types.NotFoundError before any mutation.
func (e *Engine) Merge(ctx context.Context, sourceID, targetID string, strategy Strategy) (*MergeResult, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("source and target are the same concept (%s)", sourceID)
	}
	if strategy == "" {
		strategy = StrategyMergeFields
	}
	if !strategy.IsValid() {
		return nil, fmt.Errorf("unknown merge strategy %q", strategy)
	}

	source, err := e.repo.Load(sourceID)
	if err != nil {
		return nil, err
	}
	target, err := e.repo.Load(targetID)
	if err != nil {
		return nil, err
	}

	var merged *types.ConceptRecord
	switch strategy {
	case StrategyKeepTarget:
		merged = target.Clone()
	case StrategyMergeFields:
		merged = e.mergeFields(source, target)
	}

	result := &MergeResult{Merged: merged}

	// Sibling rewrites come first; they reference the snapshot's
	// cross-reference index and each one is independently retryable.
	siblings, err := e.store.FindReferencing(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find records referencing %s: %w", sourceID, err)
	}
	for _, siblingID := range siblings {
		if siblingID == sourceID || siblingID == targetID {
			continue
		}
		if err := e.rewriteSibling(siblingID, sourceID, targetID); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to rewrite %s: %v", siblingID, err))
			continue
		}
		result.RewrittenSiblings = append(result.RewrittenSiblings, siblingID)
	}

	if err := e.store.DeleteRecord(ctx, sourceID); err != nil {
		// The snapshot may not know the source yet (file store ahead of
		// snapshot); that is a warning, not a failure.
		var notFound *types.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to delete %s from snapshot: %w", sourceID, err)
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s was not present in the snapshot", sourceID))
	}

	if err := e.repo.Delete(sourceID); err != nil {
		return nil, fmt.Errorf("failed to delete source file: %w", err)
	}
	if err := e.repo.Save(merged); err != nil {
		return nil, fmt.Errorf("failed to write merged record: %w", err)
	}

	return result, nil
}

// mergeFields derives the surviving record: the target's singular fields
// verbatim, collection fields as deduplicated unions.
func (e *Engine) mergeFields(source, target *types.ConceptRecord) *types.ConceptRecord {
	merged := target.Clone()

	merged.Tags = unionSorted(target.Tags, source.Tags)
	merged.Aliases = unionSorted(target.Aliases, source.Aliases)

	// The union must not point the survivor at itself or at the record
	// being deleted.
	merged.RelatedConcepts = nil
	for _, id := range unionSorted(target.RelatedConcepts, source.RelatedConcepts) {
		if id == source.ID || id == target.ID {
			continue
		}
		merged.RelatedConcepts = append(merged.RelatedConcepts, id)
	}

	// Related notes keep target-then-source insertion order.
	merged.RelatedNotes = unionOrdered(target.RelatedNotes, source.RelatedNotes)

	merged.Articles = unionReferences(target.Articles, source.Articles)
	merged.Books = unionReferences(target.Books, source.Books)
	merged.References = unionReferences(target.References, source.References)
	merged.Tutorials = unionReferences(target.Tutorials, source.Tutorials)

	merged.DatePublished = earlierDate(target.DatePublished, source.DatePublished)
	merged.DateModified = e.now().Format("2006-01-02")

	return merged
}

// rewriteSibling replaces oldID with newID in the sibling's
// relatedConcepts list, deduplicating the result, and persists it back
// to the file store.
func (e *Engine) rewriteSibling(siblingID, oldID, newID string) error {
	sibling, err := e.repo.Load(siblingID)
	if err != nil {
		return err
	}

	seen := map[string]struct{}{}
	rewritten := make([]string, 0, len(sibling.RelatedConcepts))
	changed := false
	for _, id := range sibling.RelatedConcepts {
		if id == oldID {
			id = newID
			changed = true
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rewritten = append(rewritten, id)
	}
	if !changed {
		return nil
	}
	sibling.RelatedConcepts = rewritten
	return e.repo.Save(sibling)
}

// unionSorted merges two string lists with set semantics, sorted
// lexicographically.
func unionSorted(a, b []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// unionOrdered merges two string lists preserving first-occurrence order.
func unionOrdered(a, b []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// unionReferences merges typed reference lists, deduplicating by URL
// (case-sensitive, first occurrence wins, target entries first).
func unionReferences(target, source []types.Reference) []types.Reference {
	seen := map[string]struct{}{}
	var out []types.Reference
	for _, list := range [][]types.Reference{target, source} {
		for _, ref := range list {
			if _, ok := seen[ref.URL]; ok {
				continue
			}
			seen[ref.URL] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}

// earlierDate picks the chronologically smaller ISO date string,
// tolerating one side being unset.
func earlierDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b < a {
		return b
	}
	return a
}
