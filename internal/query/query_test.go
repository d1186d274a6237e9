package query

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticket struct {
	id       string
	title    string
	status   string
	severity string
	opened   string
	weight   int
	notes    []string
	labels   []string
}

var ticketSchema = Schema[ticket]{
	Text:   []func(ticket) string{func(t ticket) string { return t.title }},
	Nested: func(t ticket) []string { return t.notes },
	Facets: map[string]func(ticket) []string{
		"status":   One(func(t ticket) string { return t.status }),
		"severity": One(func(t ticket) string { return t.severity }),
		"label":    func(t ticket) []string { return t.labels },
	},
	Keys: map[string]func(ticket) Value{
		"opened": func(t ticket) Value { return String(t.opened) },
		"title":  func(t ticket) Value { return String(t.title) },
		"weight": func(t ticket) Value { return Number(float64(t.weight)) },
		"status": func(t ticket) Value { return String(t.status) },
	},
	Categories: []string{"bug", "feature"},
	Category:   func(t ticket) []string { return t.labels },
}

func tickets() []ticket {
	return []ticket{
		{id: "1", title: "Disk full on db-1", status: "OPEN", severity: "HIGH", opened: "2024-01-20T10:30:00Z", weight: 3, labels: []string{"bug"}},
		{id: "2", title: "Login slow", status: "CLOSED", severity: "LOW", opened: "2024-01-20T09:15:00Z", weight: 1, notes: []string{"Cache miss storm"}, labels: []string{"bug", "perf"}},
		{id: "3", title: "Add SSO", status: "OPEN", severity: "MEDIUM", opened: "2024-01-19T08:45:00Z", weight: 2, labels: []string{"feature"}},
		{id: "4", title: "Timeout in checkout", status: "OPEN", severity: "HIGH", opened: "2024-01-18T14:20:00Z", weight: 3},
	}
}

func ids(in []ticket) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = t.id
	}
	return out
}

func TestFilterIdentity(t *testing.T) {
	all := tickets()
	state := NewFilterState("status", "severity")
	assert.True(t, state.IsIdentity())
	assert.Equal(t, all, Filter(all, state, ticketSchema))
	assert.Equal(t, all, Filter(all, FilterState{}, ticketSchema))
	// Empty facet value behaves like All.
	assert.Equal(t, all, Filter(all, state.WithFacet("status", ""), ticketSchema))
}

func TestFilterSearch(t *testing.T) {
	all := tickets()

	got := Filter(all, NewFilterState().WithSearch("  DISK "), ticketSchema)
	assert.Equal(t, []string{"1"}, ids(got))

	got = Filter(all, NewFilterState().WithSearch("nothing matches"), ticketSchema)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilterNestedMatchKeepsWholeParent(t *testing.T) {
	all := tickets()
	got := Filter(all, NewFilterState().WithSearch("storm"), ticketSchema)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].id)
	assert.Equal(t, []string{"Cache miss storm"}, got[0].notes)
	assert.Equal(t, []string{"bug", "perf"}, got[0].labels)
}

func TestFilterFacets(t *testing.T) {
	all := tickets()
	state := NewFilterState("status", "severity").WithFacet("severity", "HIGH")
	assert.Equal(t, []string{"1", "4"}, ids(Filter(all, state, ticketSchema)))

	// Facet equality is case-sensitive.
	state = NewFilterState("severity").WithFacet("severity", "high")
	assert.Empty(t, Filter(all, state, ticketSchema))

	// Search AND facets.
	state = NewFilterState("status").WithFacet("status", "OPEN").WithSearch("sso")
	assert.Equal(t, []string{"3"}, ids(Filter(all, state, ticketSchema)))

	// Multi-valued facet matches when any value equals.
	state = NewFilterState("label").WithFacet("label", "perf")
	assert.Equal(t, []string{"2"}, ids(Filter(all, state, ticketSchema)))

	// Unknown facet with a value matches nothing.
	state = NewFilterState().WithFacet("owner", "alice")
	assert.Empty(t, Filter(all, state, ticketSchema))
}

func TestFilterIsSubsetAndPure(t *testing.T) {
	all := tickets()
	before := slices.Clone(all)
	got := Filter(all, NewFilterState().WithSearch("o"), ticketSchema)
	for _, g := range got {
		assert.Contains(t, ids(all), g.id)
	}
	assert.Equal(t, before, all)
}

func TestFilterStateCopies(t *testing.T) {
	base := NewFilterState("status")
	changed := base.WithFacet("status", "OPEN")
	assert.Equal(t, All, base.Facet("status"))
	assert.Equal(t, "OPEN", changed.Facet("status"))
}

func TestSortDates(t *testing.T) {
	all := tickets()
	got := Sort(all, SortState{Key: "opened", Direction: Descending}, ticketSchema)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(got))

	got = Sort(all, SortState{Key: "opened", Direction: Ascending}, ticketSchema)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(got))
}

func TestSortDescendingIsReverseWithoutTies(t *testing.T) {
	all := tickets()
	asc := Sort(all, SortState{Key: "title", Direction: Ascending}, ticketSchema)
	desc := Sort(all, SortState{Key: "title", Direction: Descending}, ticketSchema)
	reversed := slices.Clone(asc)
	slices.Reverse(reversed)
	assert.Equal(t, ids(reversed), ids(desc))
}

func TestSortIsStable(t *testing.T) {
	all := tickets()
	asc := Sort(all, SortState{Key: "weight", Direction: Ascending}, ticketSchema)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(asc))

	desc := Sort(all, SortState{Key: "weight", Direction: Descending}, ticketSchema)
	assert.Equal(t, []string{"1", "4", "3", "2"}, ids(desc))

	status := Sort(all, SortState{Key: "status", Direction: Ascending}, ticketSchema)
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(status))
}

func TestSortIdempotent(t *testing.T) {
	all := tickets()
	for _, key := range ticketSchema.KeyNames() {
		for _, dir := range []Direction{Ascending, Descending} {
			state := SortState{Key: key, Direction: dir}
			once := Sort(all, state, ticketSchema)
			assert.Equal(t, once, Sort(once, state, ticketSchema), "key=%s dir=%s", key, dir)
		}
	}
}

func TestSortUnknownKeyKeepsOrder(t *testing.T) {
	all := tickets()
	got := Sort(all, SortState{Key: "nope", Direction: Ascending}, ticketSchema)
	assert.Equal(t, ids(all), ids(got))
	got[0].id = "changed"
	assert.Equal(t, "1", all[0].id)
}

func TestSortMixedStringsFallBackToLexical(t *testing.T) {
	items := []ticket{
		{id: "a", opened: "2024-01-02"},
		{id: "b", opened: "soon"},
		{id: "c", opened: "2023-12-31"},
	}
	got := Sort(items, SortState{Key: "opened", Direction: Ascending}, ticketSchema)
	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestToggleAndParseDirection(t *testing.T) {
	s := SortState{Key: "opened", Direction: Descending}
	assert.Equal(t, SortState{Key: "opened", Direction: Ascending}, Toggle(s, "opened"))
	assert.Equal(t, SortState{Key: "title", Direction: Descending}, Toggle(s, "title"))

	d, err := ParseDirection("ASC")
	require.NoError(t, err)
	assert.Equal(t, Ascending, d)
	d, err = ParseDirection("descending")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)

	d, err = ParseDirection("  ")
	require.NoError(t, err)
	assert.Equal(t, Descending, d)
}

func TestAggregate(t *testing.T) {
	all := tickets()
	stats := Aggregate(all, ticketSchema)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Get("bug"))
	assert.Equal(t, 1, stats.Get("feature"))
	// "perf" is not a known category and is ignored.
	assert.Equal(t, 0, stats.Get("perf"))
	assert.Equal(t, 3, stats.Counted())
	assert.Len(t, stats.Counts, 2)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, ticketSchema)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, map[string]int{"bug": 0, "feature": 0}, stats.Counts)
}

func TestFacetValues(t *testing.T) {
	assert.Equal(t, []string{"HIGH", "LOW", "MEDIUM"}, ticketSchema.FacetValues(tickets(), "severity"))
	assert.Nil(t, ticketSchema.FacetValues(tickets(), "missing"))
}

func TestIDSet(t *testing.T) {
	var s IDSet
	assert.False(t, s.Contains("a"))
	s.Remove("a")

	assert.True(t, s.Toggle("b"))
	s.Add("a")
	assert.Equal(t, []string{"a", "b"}, s.Sorted())

	c := s.Clone()
	assert.False(t, s.Toggle("b"))
	assert.Equal(t, 1, s.Len())
	assert.True(t, c.Contains("b"))

	n := NewIDSet("overview")
	assert.True(t, n.Contains("overview"))
}
