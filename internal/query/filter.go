// Package query implements the in-memory filter, sort and aggregate engine
// shared by the incident, changelog, API explorer and webhook views.
package query

import (
	"strings"
)

// All is the facet sentinel meaning "no constraint".
const All = "all"

// FilterState is the ephemeral search and facet selection of a view.
type FilterState struct {
	SearchTerm string
	Facets     map[string]string
}

// NewFilterState returns a state with every named facet set to All.
func NewFilterState(facets ...string) FilterState {
	f := FilterState{Facets: make(map[string]string, len(facets))}
	for _, name := range facets {
		f.Facets[name] = All
	}
	return f
}

// WithSearch returns a copy of the state with the given search term.
func (f FilterState) WithSearch(term string) FilterState {
	out := f.clone()
	out.SearchTerm = term
	return out
}

// WithFacet returns a copy of the state with one facet changed.
func (f FilterState) WithFacet(name, value string) FilterState {
	out := f.clone()
	out.Facets[name] = value
	return out
}

// Facet returns the selected value for a facet, All when unset.
func (f FilterState) Facet(name string) string {
	v, ok := f.Facets[name]
	if !ok || v == "" {
		return All
	}
	return v
}

// IsIdentity reports whether the state matches every entity.
func (f FilterState) IsIdentity() bool {
	if strings.TrimSpace(f.SearchTerm) != "" {
		return false
	}
	for name := range f.Facets {
		if f.Facet(name) != All {
			return false
		}
	}
	return true
}

func (f FilterState) clone() FilterState {
	out := FilterState{SearchTerm: f.SearchTerm, Facets: make(map[string]string, len(f.Facets))}
	for k, v := range f.Facets {
		out.Facets[k] = v
	}
	return out
}

// Filter returns the entities matching both the free-text search and every
// selected facet, in input order. The input slice is not modified.
//
// A parent whose nested text matches the search is returned whole; its
// children are never pruned.
func Filter[T any](items []T, state FilterState, schema Schema[T]) []T {
	term := strings.ToLower(strings.TrimSpace(state.SearchTerm))

	// Collect active facets once instead of per entity.
	type facet struct {
		value  string
		values func(T) []string
	}
	var active []facet
	for name := range state.Facets {
		v := state.Facet(name)
		if v == All {
			continue
		}
		active = append(active, facet{value: v, values: schema.Facets[name]})
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesSearch(item, term, schema) {
			continue
		}
		ok := true
		for _, f := range active {
			if f.values == nil || !containsExact(f.values(item), f.value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

func matchesSearch[T any](item T, term string, schema Schema[T]) bool {
	if term == "" {
		return true
	}
	for _, text := range schema.Text {
		if strings.Contains(strings.ToLower(text(item)), term) {
			return true
		}
	}
	if schema.Nested != nil {
		for _, text := range schema.Nested(item) {
			if strings.Contains(strings.ToLower(text), term) {
				return true
			}
		}
	}
	return false
}

// containsExact is a case-sensitive membership test.
func containsExact(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
