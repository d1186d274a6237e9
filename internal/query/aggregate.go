package query

// Stats are category counts over a whole collection.
type Stats struct {
	// Total is the number of entities, not sub-entities.
	Total int
	// Counts has one entry per known category.
	Counts map[string]int
}

// Counted returns the sum of all category counts.
func (s Stats) Counted() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Get returns the count for a category, zero when unknown.
func (s Stats) Get(category string) int {
	return s.Counts[category]
}

// Aggregate counts every entity's categories over the unfiltered collection.
// Categories the schema does not declare are ignored.
func Aggregate[T any](items []T, schema Schema[T]) Stats {
	stats := Stats{
		Total:  len(items),
		Counts: make(map[string]int, len(schema.Categories)),
	}
	for _, c := range schema.Categories {
		stats.Counts[c] = 0
	}
	if schema.Category == nil {
		return stats
	}
	for _, item := range items {
		for _, c := range schema.Category(item) {
			if _, known := stats.Counts[c]; known {
				stats.Counts[c]++
			}
		}
	}
	return stats
}
