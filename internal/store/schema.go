package store

// schema contains the SQL statements to create the symmerge database schema.
const schema = `
-- Version enumeration order
CREATE TABLE IF NOT EXISTS versions (
    position INTEGER PRIMARY KEY,
    key      TEXT NOT NULL UNIQUE
);

-- Modules table
CREATE TABLE IF NOT EXISTS modules (
    name TEXT PRIMARY KEY
);

-- One row per structural variant; methods point at their class variant
CREATE TABLE IF NOT EXISTS variants (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    module        TEXT NOT NULL,
    parent_id     INTEGER NOT NULL DEFAULT 0,
    kind          TEXT NOT NULL,
    name          TEXT NOT NULL,
    variant_index INTEGER NOT NULL,
    fingerprint   TEXT NOT NULL,
    payload       TEXT NOT NULL,
    FOREIGN KEY (module) REFERENCES modules(name)
);

CREATE INDEX IF NOT EXISTS idx_variants_module ON variants(module);
CREATE INDEX IF NOT EXISTS idx_variants_name ON variants(name);
CREATE INDEX IF NOT EXISTS idx_variants_parent ON variants(parent_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_unique ON variants(module, parent_id, kind, name, variant_index);

-- Versions each variant is valid for
CREATE TABLE IF NOT EXISTS valid_for (
    variant_id INTEGER NOT NULL,
    version    TEXT NOT NULL,
    PRIMARY KEY (variant_id, version),
    FOREIGN KEY (variant_id) REFERENCES variants(id),
    FOREIGN KEY (version) REFERENCES versions(key)
);

CREATE INDEX IF NOT EXISTS idx_valid_for_version ON valid_for(version);

-- Metadata table for build info
CREATE TABLE IF NOT EXISTS metadata (
    key   TEXT PRIMARY KEY,
    value TEXT
);
`
