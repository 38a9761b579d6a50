package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkmforge/conceptdb/internal/types"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "concepts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixtureRecords() []*types.ConceptRecord {
	return []*types.ConceptRecord{
		{
			ID:              "habit-loop",
			Name:            "Habit Loop",
			Summary:         "Cue, routine, reward cycle behind habits.",
			Category:        "psychology",
			Tags:            []string{"habits"},
			Aliases:         []string{"Habits", "Habit Cycle"},
			RelatedConcepts: []string{"atomic-habits"},
			RelatedNotes:    []string{"https://notes.example.com/habit-loop"},
			Books:           []types.Reference{{Title: "The Power of Habit", URL: "https://books.example.com/power-of-habit", Type: "book"}},
		},
		{
			ID:       "atomic-habits",
			Name:     "Atomic Habits",
			Summary:  "Small changes compound into remarkable results.",
			Category: "productivity",
			Featured: true,
		},
		{
			ID:           "zettelkasten",
			Name:         "Zettelkasten",
			Summary:      "A linked note-taking method.",
			Category:     "note-taking",
			RelatedNotes: []string{"https://notes.example.com/zettelkasten"},
		},
	}
}

func TestOpenMissingSnapshot(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), true)
	var storageErr *types.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Contains(t, storageErr.Hint, "init-store")
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "concepts.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx, fixtureRecords()))
	require.NoError(t, store.Close())

	ro, err := Open(path, true)
	require.NoError(t, err)
	defer ro.Close()

	// Reads work as usual.
	rec, err := ro.GetRecord(ctx, "habit-loop")
	require.NoError(t, err)
	require.NotNil(t, rec)

	// Writes must be refused by the handle itself.
	err = ro.LogDuplicateCheck(ctx, &DuplicateCheck{Name: "Habits", Action: "pending"})
	require.Error(t, err)

	rw, err := Open(path, false)
	require.NoError(t, err)
	defer rw.Close()
	require.NoError(t, rw.LogDuplicateCheck(ctx, &DuplicateCheck{Name: "Habits", Action: "pending"}))
}

func TestInitAndGetRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Init(ctx, fixtureRecords()))

	rec, err := store.GetRecord(ctx, "habit-loop")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Habit Loop", rec.Name)
	assert.Equal(t, []string{"Habit Cycle", "Habits"}, rec.Aliases)
	assert.Equal(t, []string{"atomic-habits"}, rec.RelatedConcepts)
	assert.Equal(t, []string{"https://notes.example.com/habit-loop"}, rec.RelatedNotes)
	require.Len(t, rec.Books, 1)
	assert.Equal(t, "The Power of Habit", rec.Books[0].Title)

	missing, err := store.GetRecord(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInitIsDestructive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Init(ctx, fixtureRecords()))
	require.NoError(t, store.Init(ctx, fixtureRecords()[:1]))

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "habit-loop", records[0].ID)
}

func TestResyncIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	records := fixtureRecords()
	require.NoError(t, store.Init(ctx, records))

	report, err := store.Resync(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, len(records), report.Unchanged)
	assert.Empty(t, report.Orphans)

	again, err := store.Resync(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, report, again)
}

func TestResyncDetectsChanges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	records := fixtureRecords()
	require.NoError(t, store.Init(ctx, records[:2]))

	// Modify one record, add one, drop one from the incoming set.
	modified := records[0].Clone()
	modified.Summary = "A revised summary."
	incoming := []*types.ConceptRecord{modified, records[2]}

	report, err := store.Resync(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Unchanged)
	assert.Equal(t, []string{"atomic-habits"}, report.Orphans)

	// Orphans are reported, never deleted.
	orphan, err := store.GetRecord(ctx, "atomic-habits")
	require.NoError(t, err)
	assert.NotNil(t, orphan)

	got, err := store.GetRecord(ctx, "habit-loop")
	require.NoError(t, err)
	assert.Equal(t, "A revised summary.", got.Summary)
}

func TestDeleteRecordCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Init(ctx, fixtureRecords()))

	require.NoError(t, store.DeleteRecord(ctx, "habit-loop"))

	ids, err := store.FindByAlias(ctx, "habits")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = store.FindByRelatedNote(ctx, "https://notes.example.com/habit-loop")
	require.NoError(t, err)
	assert.Empty(t, ids)

	var notFound *types.NotFoundError
	assert.ErrorAs(t, store.DeleteRecord(ctx, "habit-loop"), &notFound)
}

func TestStructuralLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Init(ctx, fixtureRecords()))

	ids, err := store.FindByAlias(ctx, "habits")
	require.NoError(t, err)
	assert.Equal(t, []string{"habit-loop"}, ids)

	ids, err = store.FindByName(ctx, "zettelkasten")
	require.NoError(t, err)
	assert.Equal(t, []string{"zettelkasten"}, ids)

	ids, err = store.FindByRelatedNote(ctx, "https://notes.example.com/zettelkasten")
	require.NoError(t, err)
	assert.Equal(t, []string{"zettelkasten"}, ids)

	ids, err = store.FindReferencing(ctx, "atomic-habits")
	require.NoError(t, err)
	assert.Equal(t, []string{"habit-loop"}, ids)
}

func TestLogDuplicateCheck(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	check := &DuplicateCheck{
		Name:       "Habits",
		Summary:    "Proposed new concept.",
		MatchCount: 1,
		Breakdown:  `[{"id":"habit-loop","score":90}]`,
		Action:     "rejected",
	}
	require.NoError(t, store.LogDuplicateCheck(ctx, check))
	assert.NotEmpty(t, check.ID)

	var count int
	require.NoError(t, store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM duplicate_checks WHERE action = 'rejected'`).Scan(&count))
	assert.Equal(t, 1, count)
}
