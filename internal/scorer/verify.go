package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkmforge/conceptdb/internal/similarity"
	"github.com/pkmforge/conceptdb/internal/storage"
	"github.com/pkmforge/conceptdb/internal/storage/sqlite"
	"github.com/pkmforge/conceptdb/internal/textutil"
)

// Candidate is a proposed, not-yet-saved record being checked against
// the stored corpus. Name is required; the other fields widen the signal
// set when present.
type Candidate struct {
	Name         string
	Summary      string
	Aliases      []string
	RelatedNotes []string
}

// Match is one stored record the candidate resembles.
type Match struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Recommendation is the advisory verdict on the top match. The engine
// never auto-deletes on its own verdict; finality lives with a human.
type Recommendation string

const (
	RecommendReject  Recommendation = "REJECT - Certain duplicate"
	RecommendFlag    Recommendation = "FLAG - Manual review required"
	RecommendCaution Recommendation = "ALLOW - Proceed with caution"
	RecommendAllow   Recommendation = "ALLOW - No duplicates found"
)

// Verification is the result of scoring a candidate one-vs-all.
type Verification struct {
	Matches        []Match
	TopScore       int
	Recommendation Recommendation
}

// VerifyCandidate scores the candidate against every stored record and
// appends an audit entry to the duplicate_checks log (a side effect of
// verification, not of batch scanning). Structural signals use the
// snapshot's alias/name/URL indexes; lexical signals walk the corpus.
func VerifyCandidate(ctx context.Context, store storage.Store, cand Candidate) (*Verification, error) {
	if cand.Name == "" {
		return nil, fmt.Errorf("candidate name is required")
	}

	records, err := store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	names := make(map[string]string, len(records))
	for _, rec := range records {
		names[rec.ID] = rec.Name
	}

	candNorm := textutil.Normalize(cand.Name)
	matches := map[string]*Match{}
	order := []string{}
	record := func(id string, contribution int, reason string) {
		m, ok := matches[id]
		if !ok {
			m = &Match{ID: id, Name: names[id]}
			matches[id] = m
			order = append(order, id)
		}
		if contribution > m.Score {
			m.Score = contribution
		}
		m.Reasons = append(m.Reasons, reason)
	}

	// Exact normalized name.
	for _, rec := range records {
		if candNorm != "" && textutil.Normalize(rec.Name) == candNorm {
			record(rec.ID, scoreExactName, "Exact name match (normalized)")
		}
	}

	// Alias cross-match, both directions: candidate name against stored
	// aliases, candidate aliases against stored names. Alias-to-alias is
	// deliberately not checked.
	if candNorm != "" {
		ids, err := store.FindByAlias(ctx, candNorm)
		if err != nil {
			return nil, fmt.Errorf("failed alias lookup: %w", err)
		}
		for _, id := range ids {
			record(id, scoreAliasMatch, fmt.Sprintf("Name %q matches an alias of %q", cand.Name, names[id]))
		}
	}
	for _, alias := range cand.Aliases {
		aliasNorm := textutil.Normalize(alias)
		if aliasNorm == "" {
			continue
		}
		ids, err := store.FindByName(ctx, aliasNorm)
		if err != nil {
			return nil, fmt.Errorf("failed name lookup: %w", err)
		}
		for _, id := range ids {
			record(id, scoreAliasMatch, fmt.Sprintf("Alias %q matches the name of %q", alias, names[id]))
		}
	}

	// Fuzzy name similarity.
	for _, rec := range records {
		if sim := fuzzyNameSimilarity(candNorm, textutil.Normalize(rec.Name)); sim > fuzzyNameThreshold {
			record(rec.ID, fuzzyScore(sim), fmt.Sprintf("Fuzzy name similarity (%.2f)", sim))
		}
	}

	// Summary similarity.
	if cand.Summary != "" {
		for _, rec := range records {
			if rec.Summary == "" {
				continue
			}
			if sim := similarity.TFIDFCosine(cand.Summary, rec.Summary); sim > summaryThreshold {
				record(rec.ID, summaryScore(sim), fmt.Sprintf("Summary similarity (%.2f)", sim))
			}
		}
	}

	// Shared related-note URLs (exact match, never normalized).
	for _, url := range cand.RelatedNotes {
		ids, err := store.FindByRelatedNote(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed related-note lookup: %w", err)
		}
		for _, id := range ids {
			record(id, scoreSharedNote, fmt.Sprintf("Shared related note (%s)", url))
		}
	}

	result := &Verification{}
	for _, id := range order {
		result.Matches = append(result.Matches, *matches[id])
	}
	sort.SliceStable(result.Matches, func(i, j int) bool {
		if result.Matches[i].Score != result.Matches[j].Score {
			return result.Matches[i].Score > result.Matches[j].Score
		}
		return result.Matches[i].ID < result.Matches[j].ID
	})

	if len(result.Matches) > 0 {
		result.TopScore = result.Matches[0].Score
	}
	result.Recommendation = recommend(result)

	if err := logVerification(ctx, store, cand, result); err != nil {
		return nil, err
	}
	return result, nil
}

// recommend applies the advisory thresholds to the top result. The 90
// boundary is literal: a score of exactly 90 rejects.
func recommend(v *Verification) Recommendation {
	switch {
	case len(v.Matches) == 0:
		return RecommendAllow
	case v.TopScore >= 90:
		return RecommendReject
	case v.TopScore >= DefaultThreshold:
		return RecommendFlag
	default:
		return RecommendCaution
	}
}

func logVerification(ctx context.Context, store storage.Store, cand Candidate, v *Verification) error {
	matches := v.Matches
	if matches == nil {
		// A clean pass stores "[]", never "null".
		matches = []Match{}
	}
	breakdown, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to serialize score breakdown: %w", err)
	}
	action := "pending"
	if v.TopScore >= 90 {
		action = "rejected"
	}
	return store.LogDuplicateCheck(ctx, &sqlite.DuplicateCheck{
		Name:       cand.Name,
		Summary:    cand.Summary,
		MatchCount: len(v.Matches),
		Breakdown:  string(breakdown),
		Action:     action,
	})
}
