package merge

import "github.com/abramin/symmerge/internal/symbols"

// Summary counts names and variants in a merged mapping.
type Summary struct {
	Modules             int `json:"modules"`
	Classes             int `json:"classes"`
	Functions           int `json:"functions"`
	OverloadedFunctions int `json:"overloaded_functions"`
	Methods             int `json:"methods"`
	OverloadedMethods   int `json:"overloaded_methods"`
	Variants            int `json:"variants"`
	// Divergent counts names with more than one variant.
	Divergent int `json:"divergent"`
}

func countNames[S any](s *Summary, table map[string][]*symbols.Merged[S]) int {
	for _, variants := range table {
		s.Variants += len(variants)
		if len(variants) > 1 {
			s.Divergent++
		}
	}
	return len(table)
}

// Summarize walks the merged mapping and counts it.
func Summarize(modules map[string]*symbols.MergedModule) Summary {
	var s Summary
	for _, mod := range modules {
		s.Modules++
		s.Functions += countNames(&s, mod.Functions)
		s.OverloadedFunctions += countNames(&s, mod.OverloadedFunctions)
		for _, variants := range mod.Classes {
			s.Classes++
			s.Variants += len(variants)
			if len(variants) > 1 {
				s.Divergent++
			}
			for _, cls := range variants {
				s.Methods += countNames(&s, cls.Methods)
				s.OverloadedMethods += countNames(&s, cls.OverloadedMethods)
			}
		}
	}
	return s
}
