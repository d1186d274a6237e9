package query

import (
	"sort"
	"time"
)

// Schema describes how the engine reads an entity type.
type Schema[T any] struct {
	// Text fields eligible for free-text search.
	Text []func(T) string
	// Nested returns the free-text of sub-entities (e.g. change descriptions).
	Nested func(T) []string
	// Facets maps a facet name to the values an entity carries for it.
	// Scalar fields return a single value.
	Facets map[string]func(T) []string
	// Keys maps a sort key name to its value accessor.
	Keys map[string]func(T) Value
	// Categories are the known aggregate labels, in display order.
	Categories []string
	// Category returns the categories an entity contributes to the aggregate.
	Category func(T) []string
}

// HasKey reports whether key is a declared sort key.
func (s Schema[T]) HasKey(key string) bool {
	_, ok := s.Keys[key]
	return ok
}

// KeyNames returns the declared sort keys in lexical order.
func (s Schema[T]) KeyNames() []string {
	names := make([]string, 0, len(s.Keys))
	for k := range s.Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FacetValues returns the distinct values of a facet across items, sorted.
// Used to populate facet pickers.
func (s Schema[T]) FacetValues(items []T, facet string) []string {
	get, ok := s.Facets[facet]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		for _, v := range get(item) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// One wraps a scalar field accessor as a facet accessor.
func One[T any](field func(T) string) func(T) []string {
	return func(item T) []string { return []string{field(item)} }
}

type valueKind int

const (
	kindString valueKind = iota
	kindNumber
	kindTime
)

// Value is a sortable field value.
type Value struct {
	kind valueKind
	str  string
	num  float64
	at   time.Time
}

// String returns a string value. Date-like strings are detected by Sort.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: kindNumber, num: n} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: kindTime, at: t} }
