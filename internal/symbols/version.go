package symbols

import "slices"

// Version identifies one supported target, e.g. "38" for Python 3.8.
// Versions are opaque; only their position in the configured sequence matters.
type Version string

// Versions is an ordered sequence of version tags.
type Versions []Version

// Contains reports whether v is part of the sequence.
func (vs Versions) Contains(v Version) bool {
	return slices.Contains(vs, v)
}

// Index returns the position of v, or -1.
func (vs Versions) Index(v Version) int {
	return slices.Index(vs, v)
}

// Strings returns the version keys as plain strings.
func (vs Versions) Strings() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// ParseVersions converts plain keys into a version sequence, keeping order.
func ParseVersions(keys []string) Versions {
	out := make(Versions, len(keys))
	for i, k := range keys {
		out[i] = Version(k)
	}
	return out
}
