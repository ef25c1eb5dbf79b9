package merge

import "github.com/abramin/symmerge/internal/symbols"

// classKey addresses one class variant within a module.
type classKey struct {
	name    string
	variant int
}

// members is the merge state of a single class variant.
type members struct {
	methods    *Table[*symbols.FunctionSymbol]
	overloaded *Table[*symbols.OverloadedFunctionSymbol]
}

func newMembers() *members {
	return &members{
		methods:    NewTable[*symbols.FunctionSymbol](),
		overloaded: NewTable[*symbols.OverloadedFunctionSymbol](),
	}
}

func (m *members) fold(version symbols.Version, cls *symbols.ClassSymbol) {
	for _, fn := range cls.Methods {
		m.methods.Fold(version, fn)
	}
	for _, fn := range cls.OverloadedMethods {
		m.overloaded.Fold(version, fn)
	}
}

// ModuleMerger accumulates the variants of one module across versions.
// Versions must be folded in enumeration order.
type ModuleMerger struct {
	name       string
	classes    *Table[*symbols.ClassSymbol]
	functions  *Table[*symbols.FunctionSymbol]
	overloaded *Table[*symbols.OverloadedFunctionSymbol]
	members    map[classKey]*members
}

// NewModuleMerger returns an empty merger for the named module.
func NewModuleMerger(name string) *ModuleMerger {
	return &ModuleMerger{
		name:       name,
		classes:    NewTable[*symbols.ClassSymbol](),
		functions:  NewTable[*symbols.FunctionSymbol](),
		overloaded: NewTable[*symbols.OverloadedFunctionSymbol](),
		members:    map[classKey]*members{},
	}
}

// Fold merges the module as observed in version. A nil module is absent in
// that version and contributes nothing.
func (m *ModuleMerger) Fold(version symbols.Version, mod *symbols.ModuleSymbol) {
	if mod == nil {
		return
	}
	for _, cls := range mod.Classes {
		key := classKey{name: cls.Key(), variant: m.classes.Fold(version, cls)}
		state, ok := m.members[key]
		if !ok {
			state = newMembers()
			m.members[key] = state
		}
		state.fold(version, cls)
	}
	for _, fn := range mod.Functions {
		m.functions.Fold(version, fn)
	}
	for _, fn := range mod.OverloadedFunctions {
		m.overloaded.Fold(version, fn)
	}
}

// Result freezes the accumulated state into a merged module.
func (m *ModuleMerger) Result() *symbols.MergedModule {
	out := symbols.NewMergedModule(m.name)
	out.Functions = m.functions.Map()
	out.OverloadedFunctions = m.overloaded.Map()
	for _, name := range m.classes.Names() {
		variants := m.classes.Variants(name)
		merged := make([]*symbols.MergedClass, len(variants))
		for i, v := range variants {
			state := m.members[classKey{name: name, variant: i}]
			merged[i] = &symbols.MergedClass{
				Merged: symbols.Merged[*symbols.ClassSymbol]{
					Symbol:   v.Symbol.Shape(),
					ValidFor: v.ValidFor,
				},
				Methods:           state.methods.Map(),
				OverloadedMethods: state.overloaded.Map(),
			}
		}
		out.Classes[name] = merged
	}
	return out
}

// MergeModule merges the named module across every version of src.
func MergeModule(name string, src Source) *symbols.MergedModule {
	merger := NewModuleMerger(name)
	for _, v := range src.Versions() {
		merger.Fold(v, src.Module(v, name))
	}
	return merger.Result()
}
