package merge

import "github.com/abramin/symmerge/internal/symbols"

// Mergeable is satisfied by every symbol kind the merger folds: it exposes the
// grouping key and a total structural equality.
type Mergeable[S any] interface {
	Key() string
	Equal(other S) bool
}

// Table holds, for every symbol name in one scope, the ordered list of
// structural variants seen so far and the versions each one is valid for.
type Table[S Mergeable[S]] struct {
	names    []string
	variants map[string][]*symbols.Merged[S]
}

// NewTable returns an empty table.
func NewTable[S Mergeable[S]]() *Table[S] {
	return &Table[S]{variants: map[string][]*symbols.Merged[S]{}}
}

// Fold records that sym was observed in version and returns the index of the
// variant that now carries the version. The first structurally equal variant
// wins; when none matches a new variant is appended.
func (t *Table[S]) Fold(version symbols.Version, sym S) int {
	key := sym.Key()
	existing, ok := t.variants[key]
	if !ok {
		t.names = append(t.names, key)
	}
	for i, m := range existing {
		if m.Symbol.Equal(sym) {
			m.ValidFor = append(m.ValidFor, version)
			return i
		}
	}
	t.variants[key] = append(existing, &symbols.Merged[S]{
		Symbol:   sym,
		ValidFor: symbols.Versions{version},
	})
	return len(existing)
}

// Names returns the symbol names in first-seen order.
func (t *Table[S]) Names() []string {
	return t.names
}

// Variants returns the variant list for name.
func (t *Table[S]) Variants(name string) []*symbols.Merged[S] {
	return t.variants[name]
}

// Len returns the number of distinct names.
func (t *Table[S]) Len() int {
	return len(t.names)
}

// Map returns the name to variants mapping.
func (t *Table[S]) Map() map[string][]*symbols.Merged[S] {
	out := make(map[string][]*symbols.Merged[S], len(t.variants))
	for name, variants := range t.variants {
		out[name] = variants
	}
	return out
}
