package sqlite

const schema = `
-- Concept records, denormalized singular fields plus content hash
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    normalized_name TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    explanation TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    featured INTEGER NOT NULL DEFAULT 0,
    icon TEXT NOT NULL DEFAULT '',
    date_published TEXT NOT NULL DEFAULT '',
    date_modified TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL,
    source_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_normalized_name ON records(normalized_name);

-- Aliases table
CREATE TABLE IF NOT EXISTS aliases (
    record_id TEXT NOT NULL,
    alias TEXT NOT NULL,
    normalized_alias TEXT NOT NULL,
    PRIMARY KEY (record_id, alias),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_aliases_normalized ON aliases(normalized_alias);

-- Tags table
CREATE TABLE IF NOT EXISTS tags (
    record_id TEXT NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (record_id, tag),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);

-- Related-concept links (ordered by position within a record)
CREATE TABLE IF NOT EXISTS related_concepts (
    record_id TEXT NOT NULL,
    related_id TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (record_id, related_id),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_related_concepts_related ON related_concepts(related_id);

-- Related-note URLs (ordered by position within a record)
CREATE TABLE IF NOT EXISTS related_notes (
    record_id TEXT NOT NULL,
    url TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (record_id, url),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_related_notes_url ON related_notes(url);

-- Typed reference lists (articles, books, references, tutorials)
CREATE TABLE IF NOT EXISTS refs (
    record_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('article', 'book', 'reference', 'tutorial')),
    title TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL,
    ref_type TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (record_id, kind, url),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_refs_url ON refs(url);

-- Verification audit log (append-only)
CREATE TABLE IF NOT EXISTS duplicate_checks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    match_count INTEGER NOT NULL DEFAULT 0,
    breakdown TEXT NOT NULL DEFAULT '[]',
    action TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_duplicate_checks_created_at ON duplicate_checks(created_at);
`
