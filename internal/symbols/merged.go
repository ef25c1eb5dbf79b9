package symbols

// Merged pairs one representative symbol with every version whose symbol of
// the same name was structurally equal to it.
type Merged[S any] struct {
	Symbol   S        `json:"symbol"`
	ValidFor Versions `json:"valid_for"`
}

// IsValidFor reports whether the variant applies to v.
func (m *Merged[S]) IsValidFor(v Version) bool {
	return m.ValidFor.Contains(v)
}

type (
	MergedFunction           = Merged[*FunctionSymbol]
	MergedOverloadedFunction = Merged[*OverloadedFunctionSymbol]
)

// MergedClass is one class shape plus its members merged across the versions
// in which that shape is valid.
type MergedClass struct {
	Merged[*ClassSymbol]
	Methods           map[string][]*MergedFunction           `json:"methods"`
	OverloadedMethods map[string][]*MergedOverloadedFunction `json:"overloaded_methods"`
}

// Method returns the variant of the named method that applies to v.
func (c *MergedClass) Method(name string, v Version) *MergedFunction {
	return lookup(c.Methods, name, v)
}

// OverloadedMethod returns the variant of the named overload set that applies to v.
func (c *MergedClass) OverloadedMethod(name string, v Version) *MergedOverloadedFunction {
	return lookup(c.OverloadedMethods, name, v)
}

// MergedModule is the version-unified view of one module.
type MergedModule struct {
	FullName            string                                 `json:"fullname"`
	Classes             map[string][]*MergedClass              `json:"classes"`
	Functions           map[string][]*MergedFunction           `json:"functions"`
	OverloadedFunctions map[string][]*MergedOverloadedFunction `json:"overloaded_functions"`
}

// NewMergedModule returns an empty merged module with initialized maps.
func NewMergedModule(fullName string) *MergedModule {
	return &MergedModule{
		FullName:            fullName,
		Classes:             map[string][]*MergedClass{},
		Functions:           map[string][]*MergedFunction{},
		OverloadedFunctions: map[string][]*MergedOverloadedFunction{},
	}
}

// Class returns the class variant that applies to v.
func (m *MergedModule) Class(name string, v Version) *MergedClass {
	for _, c := range m.Classes[name] {
		if c.IsValidFor(v) {
			return c
		}
	}
	return nil
}

// Function returns the function variant that applies to v.
func (m *MergedModule) Function(name string, v Version) *MergedFunction {
	return lookup(m.Functions, name, v)
}

// OverloadedFunction returns the overload-set variant that applies to v.
func (m *MergedModule) OverloadedFunction(name string, v Version) *MergedOverloadedFunction {
	return lookup(m.OverloadedFunctions, name, v)
}

// Versions returns every version in which any symbol of the module was seen,
// ordered by the given enumeration.
func (m *MergedModule) Versions(order Versions) Versions {
	seen := map[Version]bool{}
	mark := func(vs Versions) {
		for _, v := range vs {
			seen[v] = true
		}
	}
	for _, variants := range m.Classes {
		for _, c := range variants {
			mark(c.ValidFor)
		}
	}
	for _, variants := range m.Functions {
		for _, f := range variants {
			mark(f.ValidFor)
		}
	}
	for _, variants := range m.OverloadedFunctions {
		for _, f := range variants {
			mark(f.ValidFor)
		}
	}
	var out Versions
	for _, v := range order {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}

func lookup[S any](variants map[string][]*Merged[S], name string, v Version) *Merged[S] {
	for _, m := range variants[name] {
		if m.IsValidFor(v) {
			return m
		}
	}
	return nil
}
