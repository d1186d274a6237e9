package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc and their long forms. An empty value is
// the default direction, Descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending", "":
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q (use asc or desc)", s)
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortState is the selected sort key and direction of a view.
type SortState struct {
	Key       string
	Direction Direction
}

// Toggle applies a header click: the same key flips direction, a new key
// starts descending.
func Toggle(state SortState, key string) SortState {
	if state.Key == key {
		return SortState{Key: key, Direction: state.Direction.Flip()}
	}
	return SortState{Key: key, Direction: Descending}
}

// dateLayouts are tried in order when deciding whether a key is date-like.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Sort returns a new slice ordered by the state's key. Equal keys keep their
// input order in either direction. An unknown key returns the input order.
func Sort[T any](items []T, state SortState, schema Schema[T]) []T {
	out := make([]T, len(items))
	copy(out, items)

	get, ok := schema.Keys[state.Key]
	if !ok || len(out) < 2 {
		return out
	}

	vals := make([]Value, len(out))
	for i, item := range out {
		vals[i] = get(item)
	}
	promoteDates(vals)

	sign := 1
	if state.Direction == Descending {
		sign = -1
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return sign * compareValues(vals[a], vals[b])
	})

	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// promoteDates converts string values to timestamps when every non-empty
// string in the column parses as a date.
func promoteDates(vals []Value) {
	seen := false
	for _, v := range vals {
		if v.kind != kindString || v.str == "" {
			continue
		}
		if _, ok := parseDate(v.str); !ok {
			return
		}
		seen = true
	}
	if !seen {
		return
	}
	for i, v := range vals {
		if v.kind != kindString {
			continue
		}
		t, _ := parseDate(v.str)
		vals[i] = Time(t)
	}
}

func compareValues(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindNumber:
		return cmp.Compare(a.num, b.num)
	case kindTime:
		return a.at.Compare(b.at)
	default:
		return strings.Compare(a.str, b.str)
	}
}
