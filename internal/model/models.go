package model

import (
	"slices"
	"sort"

	"github.com/abramin/symmerge/internal/symbols"
)

// Models holds the per-version module mappings. It is read-only once built
// and safe for concurrent readers.
type Models struct {
	versions symbols.Versions
	modules  map[symbols.Version]map[string]*symbols.ModuleSymbol
}

// NewModels builds Models directly from already-keyed mappings, in the order
// given by versions.
func NewModels(versions symbols.Versions, modules map[symbols.Version]map[string]*symbols.ModuleSymbol) *Models {
	m := &Models{
		versions: slices.Clone(versions),
		modules:  make(map[symbols.Version]map[string]*symbols.ModuleSymbol, len(versions)),
	}
	for _, v := range versions {
		m.modules[v] = modules[v]
	}
	return m
}

// Versions returns the versions in enumeration order.
func (m *Models) Versions() symbols.Versions {
	return m.versions
}

// Modules returns the module mapping of one version.
func (m *Models) Modules(v symbols.Version) map[string]*symbols.ModuleSymbol {
	return m.modules[v]
}

// Module returns the named module in v, or nil when v does not contain it.
func (m *Models) Module(v symbols.Version, name string) *symbols.ModuleSymbol {
	return m.modules[v][name]
}

// ModuleNames returns the sorted union of module names across all versions.
func (m *Models) ModuleNames() []string {
	seen := map[string]bool{}
	for _, modules := range m.modules {
		for name := range modules {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
