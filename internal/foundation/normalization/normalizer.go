// Package normalization maps loosely-written configuration strings onto
// typed enum values with a defined fallback.
package normalization

import "strings"

// Normalizer resolves raw strings to values of an enum type. Lookup is
// case-insensitive and ignores surrounding whitespace; unrecognized input
// resolves to the default.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
}

// NewNormalizer builds a normalizer from canonical key/value pairs and a
// default for unrecognized input.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[clean(k)] = v
	}
	return &Normalizer[T]{values: normalized, defaultValue: defaultValue}
}

// Normalize resolves raw to its enum value, or the default when unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, ok := n.values[clean(raw)]; ok {
		return value
	}
	return n.defaultValue
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
