package query

import "sort"

// IDSet is a set of identifiers, used for expanded/collapsed UI state.
type IDSet struct {
	ids map[string]struct{}
}

// NewIDSet returns a set holding the given ids.
func NewIDSet(ids ...string) IDSet {
	s := IDSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *IDSet) init() {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
}

// Add inserts id.
func (s *IDSet) Add(id string) {
	s.init()
	s.ids[id] = struct{}{}
}

// Remove deletes id; removing a missing id is a no-op.
func (s *IDSet) Remove(id string) {
	delete(s.ids, id)
}

// Contains reports whether id is present.
func (s IDSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Toggle flips membership of id and reports whether it is now present.
func (s *IDSet) Toggle(id string) bool {
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// Len returns the number of ids.
func (s IDSet) Len() int { return len(s.ids) }

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s IDSet) Clone() IDSet {
	return NewIDSet(s.Sorted()...)
}
