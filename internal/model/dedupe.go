package model

import "github.com/abramin/symmerge/internal/symbols"

type keyed interface {
	Key() string
}

// latest drops every item whose key is reported again later in items. The
// result is nil when nothing was dropped.
func latest[S keyed](items []S, dropped func(name string)) []S {
	last := make(map[string]int, len(items))
	for i, item := range items {
		if _, ok := last[item.Key()]; ok {
			dropped(item.Key())
		}
		last[item.Key()] = i
	}
	if len(last) == len(items) {
		return nil
	}
	out := make([]S, 0, len(last))
	for i, item := range items {
		if last[item.Key()] == i {
			out = append(out, item)
		}
	}
	return out
}

// dedupe keeps one symbol per fully-qualified name in every scope of mod,
// the later report winning as for modules. Walker output is never mutated:
// a copy is returned when anything had to be dropped.
func (b *Builder) dedupe(v symbols.Version, mod *symbols.ModuleSymbol) *symbols.ModuleSymbol {
	warn := func(kind string) func(string) {
		return func(name string) {
			b.logger.Warn("symbol reported twice, keeping the later one",
				"version", v, "module", mod.FullName, "kind", kind, "symbol", name)
		}
	}

	out := *mod
	changed := false
	if fns := latest(mod.Functions, warn("function")); fns != nil {
		out.Functions, changed = fns, true
	}
	if fns := latest(mod.OverloadedFunctions, warn("overloaded_function")); fns != nil {
		out.OverloadedFunctions, changed = fns, true
	}
	owned := false
	if classes := latest(mod.Classes, warn("class")); classes != nil {
		out.Classes, changed, owned = classes, true, true
	}

	for i, cls := range out.Classes {
		methods := latest(cls.Methods, warn("method"))
		overloaded := latest(cls.OverloadedMethods, warn("overloaded_method"))
		if methods == nil && overloaded == nil {
			continue
		}
		copied := *cls
		if methods != nil {
			copied.Methods = methods
		}
		if overloaded != nil {
			copied.OverloadedMethods = overloaded
		}
		if !owned {
			out.Classes = append([]*symbols.ClassSymbol(nil), out.Classes...)
			owned = true
		}
		out.Classes[i] = &copied
		changed = true
	}

	if !changed {
		return mod
	}
	return &out
}
