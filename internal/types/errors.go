package types

import "fmt"

// NotFoundError reports a record identifier that does not exist where one
// is required (merge source/target). Distinct from a generic I/O error so
// callers can map it to a deterministic exit code.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("concept %q not found", e.ID)
}

// ParseError reports a content file that is not valid against the expected
// shape. Non-fatal at corpus-load granularity: the file is skipped and the
// rest of the load proceeds.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError reports a missing or unusable relational snapshot. The Hint
// tells the operator how to recover (typically: run init-store first).
type StorageError struct {
	Path string
	Hint string
}

func (e *StorageError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("snapshot unavailable at %s", e.Path)
	}
	return fmt.Sprintf("snapshot unavailable at %s (%s)", e.Path, e.Hint)
}
