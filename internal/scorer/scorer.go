// Package scorer combines the similarity metrics with structural signals
// (alias overlap, shared related-note links, exact normalized names) into
// a single 0-100 confidence score with human-readable reasons.
//
// Signals never average: a pair's final score is the maximum over its
// contributing signals, so one strong signal (e.g. an identical related
// note URL) is not diluted by weak ones.
package scorer

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkmforge/conceptdb/internal/similarity"
	"github.com/pkmforge/conceptdb/internal/textutil"
	"github.com/pkmforge/conceptdb/internal/types"
)

// Score contributions per signal.
const (
	scoreExactName     = 95
	scoreSharedNote    = 95
	scoreAliasMatch    = 90
	fuzzyNameThreshold = 0.85
	summaryThreshold   = 0.75

	// DefaultThreshold is the minimum score a pair must reach to be
	// retained by a batch scan.
	DefaultThreshold = 70
)

// Pair is one scored unordered record pair from a batch scan.
type Pair struct {
	IDA     string   `json:"idA" yaml:"idA"`
	IDB     string   `json:"idB" yaml:"idB"`
	NameA   string   `json:"nameA" yaml:"nameA"`
	NameB   string   `json:"nameB" yaml:"nameB"`
	Score   int      `json:"score" yaml:"score"`
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// ScanReport groups retained pairs by confidence. HIGH is score >= 90,
// MEDIUM is [max(70, threshold), 90), LOW is [threshold, 70) and only
// non-empty when the threshold was set below 70. Bucket floors follow
// the threshold rather than a hardcoded 70.
type ScanReport struct {
	Threshold int    `json:"threshold" yaml:"threshold"`
	Pairs     []Pair `json:"pairs" yaml:"pairs"`
	High      []Pair `json:"high" yaml:"high"`
	Medium    []Pair `json:"medium" yaml:"medium"`
	Low       []Pair `json:"low" yaml:"low"`
}

// ScanDuplicates scores every unordered pair of distinct records and
// retains those at or above threshold, sorted descending by score.
// Pairs are evaluated in fixed nested-loop order (i outer, j = i+1
// inner) so results are deterministic for a given corpus snapshot.
func ScanDuplicates(records []*types.ConceptRecord, threshold int) *ScanReport {
	// Zero is a valid threshold (retain every pair); only negative
	// values fall back to the default.
	if threshold < 0 {
		threshold = DefaultThreshold
	}

	prepared := make([]*scoredRecord, len(records))
	for i, rec := range records {
		prepared[i] = prepare(rec)
	}

	report := &ScanReport{Threshold: threshold}
	for i := 0; i < len(prepared); i++ {
		for j := i + 1; j < len(prepared); j++ {
			score, reasons := scorePair(prepared[i], prepared[j])
			if score < threshold {
				continue
			}
			report.Pairs = append(report.Pairs, Pair{
				IDA:     prepared[i].rec.ID,
				IDB:     prepared[j].rec.ID,
				NameA:   prepared[i].rec.Name,
				NameB:   prepared[j].rec.Name,
				Score:   score,
				Reasons: reasons,
			})
		}
	}

	sort.SliceStable(report.Pairs, func(i, j int) bool {
		if report.Pairs[i].Score != report.Pairs[j].Score {
			return report.Pairs[i].Score > report.Pairs[j].Score
		}
		if report.Pairs[i].IDA != report.Pairs[j].IDA {
			return report.Pairs[i].IDA < report.Pairs[j].IDA
		}
		return report.Pairs[i].IDB < report.Pairs[j].IDB
	})

	for _, p := range report.Pairs {
		switch {
		case p.Score >= 90:
			report.High = append(report.High, p)
		case p.Score >= DefaultThreshold:
			report.Medium = append(report.Medium, p)
		default:
			report.Low = append(report.Low, p)
		}
	}
	return report
}

// scoredRecord caches the normalized fields a record contributes to
// pairwise comparison.
type scoredRecord struct {
	rec      *types.ConceptRecord
	normName string
	aliases  map[string]struct{}
	notes    map[string]struct{}
}

func prepare(rec *types.ConceptRecord) *scoredRecord {
	s := &scoredRecord{
		rec:      rec,
		normName: textutil.Normalize(rec.Name),
		aliases:  make(map[string]struct{}, len(rec.Aliases)),
		notes:    make(map[string]struct{}, len(rec.RelatedNotes)),
	}
	for _, alias := range rec.Aliases {
		if n := textutil.Normalize(alias); n != "" {
			s.aliases[n] = struct{}{}
		}
	}
	for _, url := range rec.RelatedNotes {
		s.notes[url] = struct{}{}
	}
	return s
}

// scorePair evaluates every signal for one pair in a fixed order (name
// and alias checks, then fuzzy name, then summary, then shared notes)
// and returns the maximum contribution with the reasons in that order.
func scorePair(a, b *scoredRecord) (int, []string) {
	score := 0
	var reasons []string
	record := func(contribution int, reason string) {
		if contribution > score {
			score = contribution
		}
		reasons = append(reasons, reason)
	}

	if a.normName != "" && a.normName == b.normName {
		record(scoreExactName, "Exact name match (normalized)")
	}

	if _, ok := b.aliases[a.normName]; ok && a.normName != "" {
		record(scoreAliasMatch, fmt.Sprintf("Name %q matches an alias of %q", a.rec.Name, b.rec.Name))
	}
	if _, ok := a.aliases[b.normName]; ok && b.normName != "" {
		record(scoreAliasMatch, fmt.Sprintf("Name %q matches an alias of %q", b.rec.Name, a.rec.Name))
	}

	if sim := fuzzyNameSimilarity(a.normName, b.normName); sim > fuzzyNameThreshold {
		record(fuzzyScore(sim), fmt.Sprintf("Fuzzy name similarity (%.2f)", sim))
	}

	if a.rec.Summary != "" && b.rec.Summary != "" {
		if sim := similarity.TFIDFCosine(a.rec.Summary, b.rec.Summary); sim > summaryThreshold {
			record(summaryScore(sim), fmt.Sprintf("Summary similarity (%.2f)", sim))
		}
	}

	if url, ok := sharedNote(a, b); ok {
		record(scoreSharedNote, fmt.Sprintf("Shared related note (%s)", url))
	}

	return score, reasons
}

// fuzzyNameSimilarity is the stronger of the edit-distance and
// prefix-weighted similarities of the normalized names.
func fuzzyNameSimilarity(a, b string) float64 {
	edit := similarity.EditSimilarity(a, b)
	jw := similarity.JaroWinkler(a, b)
	if jw > edit {
		return jw
	}
	return edit
}

// fuzzyScore maps similarity (0.85, 1] to the 80-90 band.
func fuzzyScore(sim float64) int {
	return int(math.Round(80 + sim*10))
}

// summaryScore maps similarity (0.75, 1] to the 70-85 band.
func summaryScore(sim float64) int {
	return int(math.Round(70 + sim*15))
}

// sharedNote returns the first URL (in a's list order) present in both
// records' related-note lists.
func sharedNote(a, b *scoredRecord) (string, bool) {
	for _, url := range a.rec.RelatedNotes {
		if _, ok := b.notes[url]; ok {
			return url, true
		}
	}
	return "", false
}
