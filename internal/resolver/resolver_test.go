package resolver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkmforge/conceptdb/internal/concepts"
	"github.com/pkmforge/conceptdb/internal/storage/sqlite"
	"github.com/pkmforge/conceptdb/internal/types"
)

type fixture struct {
	repo   *concepts.Repository
	store  *sqlite.SnapshotStore
	engine *Engine
}

func newFixture(t *testing.T, records ...*types.ConceptRecord) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo := concepts.NewRepository(dir, filepath.Join(dir, "categories.json"))
	for _, rec := range records {
		require.NoError(t, repo.Save(rec))
	}

	store, err := sqlite.New(filepath.Join(t.TempDir(), "concepts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Init(context.Background(), records))

	engine := NewEngine(repo, store)
	engine.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return &fixture{repo: repo, store: store, engine: engine}
}

func TestMergeFieldsUnions(t *testing.T) {
	f := newFixture(t,
		&types.ConceptRecord{
			ID: "slip-box", Name: "Slip Box", Summary: "Source summary.",
			Category:      "note-taking",
			Tags:          []string{"a", "b"},
			Aliases:       []string{"Card Index"},
			RelatedNotes:  []string{"https://n.example.com/one", "https://n.example.com/two"},
			Articles:      []types.Reference{{Title: "Old intro", URL: "https://a.example.com/intro"}},
			DatePublished: "2021-03-01",
		},
		&types.ConceptRecord{
			ID: "zettelkasten", Name: "Zettelkasten", Summary: "Target summary.",
			Category:      "note-taking",
			Tags:          []string{"b", "c"},
			Aliases:       []string{"Slip Box Method"},
			RelatedNotes:  []string{"https://n.example.com/two", "https://n.example.com/zero"},
			Articles:      []types.Reference{{Title: "Intro", URL: "https://a.example.com/intro"}, {Title: "Deep dive", URL: "https://a.example.com/deep"}},
			DatePublished: "2022-01-15",
		},
	)

	result, err := f.engine.Merge(context.Background(), "slip-box", "zettelkasten", StrategyMergeFields)
	require.NoError(t, err)
	merged := result.Merged

	// Singular fields come from the target verbatim.
	assert.Equal(t, "zettelkasten", merged.ID)
	assert.Equal(t, "Zettelkasten", merged.Name)
	assert.Equal(t, "Target summary.", merged.Summary)

	// String-array unions are deduplicated and sorted.
	assert.Equal(t, []string{"a", "b", "c"}, merged.Tags)
	assert.Equal(t, []string{"Card Index", "Slip Box Method"}, merged.Aliases)

	// Related notes keep target-then-source order, minus duplicates.
	assert.Equal(t, []string{
		"https://n.example.com/two",
		"https://n.example.com/zero",
		"https://n.example.com/one",
	}, merged.RelatedNotes)

	// References deduplicate by URL, first (target) occurrence wins.
	require.Len(t, merged.Articles, 2)
	assert.Equal(t, "Intro", merged.Articles[0].Title)
	assert.Equal(t, "Deep dive", merged.Articles[1].Title)

	// Earlier publish date survives; modified date is stamped.
	assert.Equal(t, "2021-03-01", merged.DatePublished)
	assert.Equal(t, "2026-08-28", merged.DateModified)

	// Source file is gone, merged target is persisted.
	_, err = f.repo.Load("slip-box")
	var notFound *types.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	onDisk, err := f.repo.Load("zettelkasten")
	require.NoError(t, err)
	assert.Equal(t, merged, onDisk)

	// Source row is gone from the snapshot too.
	row, err := f.store.GetRecord(context.Background(), "slip-box")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestKeepTargetStrategy(t *testing.T) {
	target := &types.ConceptRecord{
		ID: "zettelkasten", Name: "Zettelkasten",
		Summary: "Target summary.", Tags: []string{"keep"},
		DateModified: "2024-05-05",
	}
	f := newFixture(t,
		&types.ConceptRecord{ID: "slip-box", Name: "Slip Box", Tags: []string{"drop"}},
		target,
	)

	result, err := f.engine.Merge(context.Background(), "slip-box", "zettelkasten", StrategyKeepTarget)
	require.NoError(t, err)
	assert.Equal(t, target, result.Merged)

	onDisk, err := f.repo.Load("zettelkasten")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, onDisk.Tags)
	assert.Equal(t, "2024-05-05", onDisk.DateModified)
}

func TestMergeRewritesSiblingReferences(t *testing.T) {
	f := newFixture(t,
		&types.ConceptRecord{ID: "slip-box", Name: "Slip Box"},
		&types.ConceptRecord{ID: "zettelkasten", Name: "Zettelkasten"},
		&types.ConceptRecord{
			ID: "evergreen-notes", Name: "Evergreen Notes",
			// Already references the target as well: the rewrite must not
			// produce a duplicate entry.
			RelatedConcepts: []string{"slip-box", "zettelkasten", "spaced-repetition"},
		},
	)

	result, err := f.engine.Merge(context.Background(), "slip-box", "zettelkasten", StrategyMergeFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"evergreen-notes"}, result.RewrittenSiblings)
	assert.Empty(t, result.Warnings)

	sibling, err := f.repo.Load("evergreen-notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"zettelkasten", "spaced-repetition"}, sibling.RelatedConcepts)
}

func TestMergeDropsSelfReference(t *testing.T) {
	f := newFixture(t,
		&types.ConceptRecord{
			ID: "slip-box", Name: "Slip Box",
			RelatedConcepts: []string{"zettelkasten", "evergreen-notes"},
		},
		&types.ConceptRecord{
			ID: "zettelkasten", Name: "Zettelkasten",
			RelatedConcepts: []string{"slip-box"},
		},
		&types.ConceptRecord{ID: "evergreen-notes", Name: "Evergreen Notes"},
	)

	result, err := f.engine.Merge(context.Background(), "slip-box", "zettelkasten", StrategyMergeFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"evergreen-notes"}, result.Merged.RelatedConcepts)
}

func TestMergeMissingRecordsFailEarly(t *testing.T) {
	f := newFixture(t, &types.ConceptRecord{ID: "zettelkasten", Name: "Zettelkasten"})

	var notFound *types.NotFoundError
	_, err := f.engine.Merge(context.Background(), "ghost", "zettelkasten", StrategyMergeFields)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ID)

	_, err = f.engine.Merge(context.Background(), "zettelkasten", "ghost", StrategyMergeFields)
	require.ErrorAs(t, err, &notFound)

	// No mutation happened.
	rec, err := f.repo.Load("zettelkasten")
	require.NoError(t, err)
	assert.Equal(t, "Zettelkasten", rec.Name)
}

func TestMergeRejectsSameID(t *testing.T) {
	f := newFixture(t, &types.ConceptRecord{ID: "zettelkasten", Name: "Zettelkasten"})
	_, err := f.engine.Merge(context.Background(), "zettelkasten", "zettelkasten", StrategyMergeFields)
	assert.Error(t, err)
}

func TestMergeUnknownStrategy(t *testing.T) {
	f := newFixture(t,
		&types.ConceptRecord{ID: "a", Name: "A"},
		&types.ConceptRecord{ID: "b", Name: "B"},
	)
	_, err := f.engine.Merge(context.Background(), "a", "b", Strategy("overwrite"))
	assert.Error(t, err)
}

func TestMergeWarnsWhenSnapshotIsBehind(t *testing.T) {
	// Record exists on disk but the snapshot has never seen it: the merge
	// still completes, reporting a warning instead of failing.
	f := newFixture(t, &types.ConceptRecord{ID: "zettelkasten", Name: "Zettelkasten"})
	require.NoError(t, f.repo.Save(&types.ConceptRecord{ID: "slip-box", Name: "Slip Box"}))

	result, err := f.engine.Merge(context.Background(), "slip-box", "zettelkasten", StrategyMergeFields)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "not present in the snapshot")
}
