package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Reference is a typed external resource attached to a concept
// (article, book, reference, tutorial).
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

// ConceptRecord is a single curated content entry. One record per JSON file;
// the file's base name must match ID (a mismatch is a validation warning,
// not fatal).
type ConceptRecord struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Summary         string      `json:"summary"`
	Explanation     string      `json:"explanation,omitempty"`
	Category        string      `json:"category"`
	Tags            []string    `json:"tags,omitempty"`
	Aliases         []string    `json:"aliases,omitempty"`
	RelatedConcepts []string    `json:"relatedConcepts,omitempty"`
	RelatedNotes    []string    `json:"relatedNotes,omitempty"`
	Articles        []Reference `json:"articles,omitempty"`
	Books           []Reference `json:"books,omitempty"`
	References      []Reference `json:"references,omitempty"`
	Tutorials       []Reference `json:"tutorials,omitempty"`
	Featured        bool        `json:"featured,omitempty"`
	Icon            string      `json:"icon,omitempty"`
	DatePublished   string      `json:"datePublished,omitempty"`
	DateModified    string      `json:"dateModified,omitempty"`
}

// Validate checks the fields required for a record to participate in
// scoring and merging.
func (r *ConceptRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ContentHash returns a stable SHA-256 hash of the record's full field set.
// Marshaling the struct fixes field order, so the hash is independent of
// key ordering in the source file.
func (r *ConceptRecord) ContentHash() string {
	data, err := json.Marshal(r)
	if err != nil {
		// A ConceptRecord contains only marshalable fields; this cannot
		// happen at runtime.
		panic(fmt.Sprintf("marshal concept record %q: %v", r.ID, err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the record.
func (r *ConceptRecord) Clone() *ConceptRecord {
	out := *r
	out.Tags = append([]string(nil), r.Tags...)
	out.Aliases = append([]string(nil), r.Aliases...)
	out.RelatedConcepts = append([]string(nil), r.RelatedConcepts...)
	out.RelatedNotes = append([]string(nil), r.RelatedNotes...)
	out.Articles = append([]Reference(nil), r.Articles...)
	out.Books = append([]Reference(nil), r.Books...)
	out.References = append([]Reference(nil), r.References...)
	out.Tutorials = append([]Reference(nil), r.Tutorials...)
	return &out
}

// ReferenceKind identifies which typed reference list an entry belongs to.
type ReferenceKind string

const (
	KindArticle   ReferenceKind = "article"
	KindBook      ReferenceKind = "book"
	KindReference ReferenceKind = "reference"
	KindTutorial  ReferenceKind = "tutorial"
)

// IsValid checks if the reference kind is one of the known lists.
func (k ReferenceKind) IsValid() bool {
	switch k {
	case KindArticle, KindBook, KindReference, KindTutorial:
		return true
	}
	return false
}

// ValidationWarning is a non-fatal data-quality finding (id/filename
// mismatch, dangling relatedConcepts reference, unknown category).
// Warnings are collected and reported, never aborted on.
type ValidationWarning struct {
	RecordID string
	Field    string
	Message  string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.RecordID, w.Field, w.Message)
}
