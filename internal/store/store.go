package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abramin/symmerge/internal/symbols"
)

// ErrNotFound is returned when a module or symbol is not stored.
var ErrNotFound = errors.New("not found")

// Store handles persistence of merged modules to SQLite.
type Store struct {
	db      *sql.DB
	dbPath  string
	baseDir string
}

// Open creates or opens a symmerge database.
// By default, stores at .symmerge/merged.db relative to the given directory.
func Open(dir string) (*Store, error) {
	dataDir := filepath.Join(dir, ".symmerge")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating .symmerge directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "merged.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{
		db:      db,
		dbPath:  dbPath,
		baseDir: dir,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DBPath returns the path to the database file.
func (s *Store) DBPath() string {
	return s.dbPath
}

// Clear removes all data from the database (for re-merging).
func (s *Store) Clear() error {
	tables := []string{"valid_for", "variants", "modules", "versions", "metadata"}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing table %s: %w", table, err)
		}
	}
	return nil
}

// SaveMerged persists the version set and every merged module in one transaction.
func (s *Store) SaveMerged(versions symbols.Versions, modules map[string]*symbols.MergedModule) error {
	batch, err := s.BeginBatch()
	if err != nil {
		return fmt.Errorf("starting batch: %w", err)
	}
	defer batch.Rollback()

	for i, v := range versions {
		if err := batch.InsertVersion(i, v); err != nil {
			return fmt.Errorf("inserting version %s: %w", v, err)
		}
	}

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := batch.InsertModule(modules[name]); err != nil {
			return fmt.Errorf("inserting module %s: %w", name, err)
		}
	}
	return batch.Commit()
}

// SetMetadata stores a key-value pair in the metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetMetadata retrieves a value from the metadata table.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	return value, err
}

// Versions returns the stored version set in enumeration order.
func (s *Store) Versions() (symbols.Versions, error) {
	rows, err := s.db.Query("SELECT key FROM versions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var versions symbols.Versions
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		versions = append(versions, symbols.Version(key))
	}
	return versions, rows.Err()
}

// ModuleNames returns the stored module names, sorted.
func (s *Store) ModuleNames() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM modules ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Stats holds statistics about the stored merge.
type Stats struct {
	VersionCount  int       `json:"version_count"`
	ModuleCount   int       `json:"module_count"`
	VariantCount  int       `json:"variant_count"`
	ValidForCount int       `json:"valid_for_count"`
	MergedAt      time.Time `json:"merged_at"`
}

// GetStats returns statistics about the stored merge.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	rows := []struct {
		table string
		dest  *int
	}{
		{"versions", &stats.VersionCount},
		{"modules", &stats.ModuleCount},
		{"variants", &stats.VariantCount},
		{"valid_for", &stats.ValidForCount},
	}

	for _, r := range rows {
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + r.table).Scan(r.dest)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", r.table, err)
		}
	}

	if ts, err := s.GetMetadata("merged_at"); err == nil {
		stats.MergedAt, _ = time.Parse(time.RFC3339, ts)
	}

	return stats, nil
}

// IndexMetadata holds metadata written to index.json next to the database.
type IndexMetadata struct {
	Version     string    `json:"version"`
	BaseDir     string    `json:"base_dir"`
	MergedAt    time.Time `json:"merged_at"`
	Versions    []string  `json:"versions"`
	ModuleCount int       `json:"module_count"`
	Modules     []string  `json:"modules"`
}

// WriteIndexJSON writes index.json for quick lookups without opening the database.
func (s *Store) WriteIndexJSON() error {
	stats, err := s.GetStats()
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}
	versions, err := s.Versions()
	if err != nil {
		return err
	}
	modules, err := s.ModuleNames()
	if err != nil {
		return err
	}

	meta := &IndexMetadata{
		Version:     "1",
		BaseDir:     s.baseDir,
		MergedAt:    stats.MergedAt,
		Versions:    versions.Strings(),
		ModuleCount: stats.ModuleCount,
		Modules:     modules,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index.json: %w", err)
	}

	indexPath := filepath.Join(filepath.Dir(s.dbPath), "index.json")
	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return fmt.Errorf("writing index.json: %w", err)
	}

	return nil
}

// Tx returns the underlying database for advanced queries.
// Use with caution - prefer adding methods to Store instead.
func (s *Store) Tx() *sql.DB {
	return s.db
}
