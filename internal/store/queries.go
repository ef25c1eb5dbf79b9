package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abramin/symmerge/internal/symbols"
)

const variantColumns = `id, module, parent_id, kind, name, variant_index, fingerprint, payload`

func scanVariant(rows *sql.Rows) (*Variant, error) {
	v := &Variant{}
	var payload string
	if err := rows.Scan(&v.ID, &v.Module, &v.ParentID, &v.Kind, &v.Name, &v.Index, &v.Fingerprint, &payload); err != nil {
		return nil, err
	}
	v.Payload = json.RawMessage(payload)
	return v, nil
}

// validFor loads the version lists of every variant of a module, in enumeration order.
func (s *Store) validFor(module string) (map[VariantID][]string, error) {
	rows, err := s.db.Query(`
		SELECT vf.variant_id, vf.version
		FROM valid_for vf
		JOIN variants x ON x.id = vf.variant_id
		JOIN versions v ON v.key = vf.version
		WHERE x.module = ?
		ORDER BY vf.variant_id, v.position
	`, module)
	if err != nil {
		return nil, fmt.Errorf("querying valid_for: %w", err)
	}
	defer rows.Close()

	out := map[VariantID][]string{}
	for rows.Next() {
		var id VariantID
		var version string
		if err := rows.Scan(&id, &version); err != nil {
			return nil, fmt.Errorf("scanning valid_for: %w", err)
		}
		out[id] = append(out[id], version)
	}
	return out, rows.Err()
}

// GetModuleVariants returns every stored variant of a module, classes first.
func (s *Store) GetModuleVariants(module string) ([]*Variant, error) {
	rows, err := s.db.Query(`
		SELECT `+variantColumns+`
		FROM variants
		WHERE module = ?
		ORDER BY parent_id, kind, name, variant_index
	`, module)
	if err != nil {
		return nil, fmt.Errorf("querying variants: %w", err)
	}
	defer rows.Close()

	var variants []*Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	validFor, err := s.validFor(module)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		v.ValidFor = validFor[v.ID]
	}
	return variants, nil
}

// LoadModule rebuilds the merged module from its stored variants.
func (s *Store) LoadModule(name string) (*symbols.MergedModule, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM modules WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("querying module: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("module %s: %w", name, ErrNotFound)
	}

	variants, err := s.GetModuleVariants(name)
	if err != nil {
		return nil, err
	}

	mod := symbols.NewMergedModule(name)
	classes := map[VariantID]*symbols.MergedClass{}
	for _, v := range variants {
		validFor := symbols.ParseVersions(v.ValidFor)
		switch v.Kind {
		case KindClass:
			cls := &symbols.MergedClass{
				Methods:           map[string][]*symbols.MergedFunction{},
				OverloadedMethods: map[string][]*symbols.MergedOverloadedFunction{},
			}
			cls.ValidFor = validFor
			if err := json.Unmarshal(v.Payload, &cls.Symbol); err != nil {
				return nil, fmt.Errorf("decoding class %s: %w", v.Name, err)
			}
			classes[v.ID] = cls
			mod.Classes[v.Name] = append(mod.Classes[v.Name], cls)
		case KindFunction, KindMethod:
			fn, err := decode[*symbols.FunctionSymbol](v, validFor)
			if err != nil {
				return nil, err
			}
			if v.Kind == KindFunction {
				mod.Functions[v.Name] = append(mod.Functions[v.Name], fn)
			} else if cls := classes[v.ParentID]; cls != nil {
				cls.Methods[v.Name] = append(cls.Methods[v.Name], fn)
			}
		case KindOverloadedFunction, KindOverloadedMethod:
			fn, err := decode[*symbols.OverloadedFunctionSymbol](v, validFor)
			if err != nil {
				return nil, err
			}
			if v.Kind == KindOverloadedFunction {
				mod.OverloadedFunctions[v.Name] = append(mod.OverloadedFunctions[v.Name], fn)
			} else if cls := classes[v.ParentID]; cls != nil {
				cls.OverloadedMethods[v.Name] = append(cls.OverloadedMethods[v.Name], fn)
			}
		}
	}
	return mod, nil
}

func decode[S any](v *Variant, validFor symbols.Versions) (*symbols.Merged[S], error) {
	m := &symbols.Merged[S]{ValidFor: validFor}
	if err := json.Unmarshal(v.Payload, &m.Symbol); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", v.Kind, v.Name, err)
	}
	return m, nil
}

// Resolve returns the variants named name (fully-qualified) in module that
// apply to version. More than one variant is returned only when different
// kinds share the name.
func (s *Store) Resolve(module, name string, version symbols.Version) ([]*Variant, error) {
	rows, err := s.db.Query(`
		SELECT `+variantColumns+`
		FROM variants x
		JOIN valid_for vf ON vf.variant_id = x.id
		WHERE x.module = ? AND x.name = ? AND vf.version = ?
		ORDER BY x.parent_id, x.kind, x.variant_index
	`, module, name, string(version))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}
	defer rows.Close()

	var variants []*Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("%s in %s for version %s: %w", name, module, version, ErrNotFound)
	}

	validFor, err := s.validFor(module)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		v.ValidFor = validFor[v.ID]
	}
	return variants, nil
}

// SearchVariants finds symbol names containing query.
func (s *Store) SearchVariants(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT module, kind, name, COUNT(*)
		FROM variants
		WHERE name LIKE ?
		GROUP BY module, kind, name
		ORDER BY name, module, kind
		LIMIT ?
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching variants: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Module, &r.Kind, &r.Name, &r.Variants); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// IsNotFound reports whether err means the requested data is not stored.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
