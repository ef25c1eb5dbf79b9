package store

import "encoding/json"

// VariantID is a type-safe identifier for stored variants.
type VariantID int64

// VariantKind represents what a stored variant wraps.
type VariantKind string

const (
	KindClass              VariantKind = "class"
	KindFunction           VariantKind = "function"
	KindOverloadedFunction VariantKind = "overloaded_function"
	KindMethod             VariantKind = "method"
	KindOverloadedMethod   VariantKind = "overloaded_method"
)

// Variant is one stored structural variant of a symbol.
type Variant struct {
	ID          VariantID       `json:"id"`
	Module      string          `json:"module"`
	ParentID    VariantID       `json:"parent_id,omitempty"` // Class variant owning a method, 0 at module level
	Kind        VariantKind     `json:"kind"`
	Name        string          `json:"name"`
	Index       int             `json:"variant_index"`
	Fingerprint string          `json:"fingerprint"`
	ValidFor    []string        `json:"valid_for"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// SearchResult is a symbol name matched by a search, with its variant count.
type SearchResult struct {
	Module   string      `json:"module"`
	Kind     VariantKind `json:"kind"`
	Name     string      `json:"name"`
	Variants int         `json:"variants"`
}
