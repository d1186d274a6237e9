package ui

import (
	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// ListState is the presentational state of one list view. It never touches
// the loaded collection.
type ListState struct {
	Filter query.FilterState
	Sort   query.SortState
}

// Derive filters then sorts items. Unsorted views pass an empty sort key.
func Derive[T any](items []T, ls ListState, schema query.Schema[T]) []T {
	out := query.Filter(items, ls.Filter, schema)
	if ls.Sort.Key == "" {
		return out
	}
	return query.Sort(out, ls.Sort, schema)
}

// NextValue cycles all -> values[0] -> ... -> values[n-1] -> all.
func NextValue(values []string, current string) string {
	if current == "" || current == query.All {
		if len(values) == 0 {
			return query.All
		}
		return values[0]
	}
	for i, v := range values {
		if v == current {
			if i+1 < len(values) {
				return values[i+1]
			}
			return query.All
		}
	}
	return query.All
}

// CycleFacet advances one facet through its values.
func (ls ListState) CycleFacet(name string, values []string) ListState {
	ls.Filter = ls.Filter.WithFacet(name, NextValue(values, ls.Filter.Facet(name)))
	return ls
}

// CycleSortKey moves to the next sortable column, starting descending.
func (ls ListState) CycleSortKey(cols []Column) ListState {
	var keys []string
	for _, c := range cols {
		if c.Key != "" {
			keys = append(keys, c.Key)
		}
	}
	if len(keys) == 0 {
		return ls
	}
	next := keys[0]
	for i, k := range keys {
		if k == ls.Sort.Key {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	ls.Sort = query.SortState{Key: next, Direction: query.Descending}
	return ls
}

// ToggleDirection flips the current sort direction.
func (ls ListState) ToggleDirection() ListState {
	if ls.Sort.Key == "" {
		return ls
	}
	ls.Sort = query.Toggle(ls.Sort, ls.Sort.Key)
	return ls
}

// WithSearch replaces the search term.
func (ls ListState) WithSearch(term string) ListState {
	ls.Filter = ls.Filter.WithSearch(term)
	return ls
}
