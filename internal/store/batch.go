package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/abramin/symmerge/internal/symbols"
)

// BeginBatch starts a transaction for batch inserts.
// Call Commit() when done, or Rollback() on error.
func (s *Store) BeginBatch() (*BatchTx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &BatchTx{tx: tx}, nil
}

// BatchTx wraps a transaction for batch operations.
type BatchTx struct {
	tx *sql.Tx
}

// Commit commits the batch transaction.
func (b *BatchTx) Commit() error {
	return b.tx.Commit()
}

// Rollback rolls back the batch transaction.
func (b *BatchTx) Rollback() error {
	return b.tx.Rollback()
}

// InsertVersion records a version at its enumeration position.
func (b *BatchTx) InsertVersion(position int, v symbols.Version) error {
	_, err := b.tx.Exec(`
		INSERT INTO versions (position, key)
		VALUES (?, ?)
		ON CONFLICT(position) DO UPDATE SET key = excluded.key
	`, position, string(v))
	return err
}

// InsertModule stores a merged module with all of its variants.
func (b *BatchTx) InsertModule(mod *symbols.MergedModule) error {
	if _, err := b.tx.Exec(`INSERT INTO modules (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, mod.FullName); err != nil {
		return err
	}

	for _, name := range sortedKeys(mod.Classes) {
		for i, cls := range mod.Classes[name] {
			id, err := b.insertVariant(mod.FullName, 0, KindClass, name, i, cls.Symbol, cls.Symbol.Fingerprint(), cls.ValidFor)
			if err != nil {
				return fmt.Errorf("inserting class %s: %w", name, err)
			}
			if err := insertVariants(b, mod.FullName, id, KindMethod, cls.Methods); err != nil {
				return err
			}
			if err := insertVariants(b, mod.FullName, id, KindOverloadedMethod, cls.OverloadedMethods); err != nil {
				return err
			}
		}
	}
	if err := insertVariants(b, mod.FullName, 0, KindFunction, mod.Functions); err != nil {
		return err
	}
	return insertVariants(b, mod.FullName, 0, KindOverloadedFunction, mod.OverloadedFunctions)
}

type fingerprinted interface {
	Fingerprint() uint64
}

func insertVariants[S fingerprinted](b *BatchTx, module string, parent VariantID, kind VariantKind, table map[string][]*symbols.Merged[S]) error {
	for _, name := range sortedKeys(table) {
		for i, m := range table[name] {
			if _, err := b.insertVariant(module, parent, kind, name, i, m.Symbol, m.Symbol.Fingerprint(), m.ValidFor); err != nil {
				return fmt.Errorf("inserting %s %s: %w", kind, name, err)
			}
		}
	}
	return nil
}

func (b *BatchTx) insertVariant(module string, parent VariantID, kind VariantKind, name string, index int, symbol any, fp uint64, validFor symbols.Versions) (VariantID, error) {
	payload, err := json.Marshal(symbol)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}
	result, err := b.tx.Exec(`
		INSERT INTO variants (module, parent_id, kind, name, variant_index, fingerprint, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, module, parent, kind, name, index, fmt.Sprintf("%016x", fp), string(payload))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, v := range validFor {
		if _, err := b.tx.Exec(`INSERT INTO valid_for (variant_id, version) VALUES (?, ?)`, id, string(v)); err != nil {
			return 0, fmt.Errorf("inserting valid_for %s: %w", v, err)
		}
	}
	return VariantID(id), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
