package core

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection accepts "asc"/"desc" as well as the long forms.
// Anything else is ascending.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

// Short returns "asc" or "desc" for use in query strings.
func (d Direction) Short() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortSpec is the current sort: a field key (empty = unsorted) and direction.
type SortSpec struct {
	Key string
	Dir Direction
}

// Toggle returns the sort spec that results from selecting key.
// Selecting the current key flips its direction; any other selection sorts
// ascending on key.
func (s SortSpec) Toggle(key string) SortSpec {
	if s.Key == key {
		return s.Reverse()
	}
	return SortSpec{Key: key, Dir: Ascending}
}

// Reverse returns the same key with the opposite direction.
func (s SortSpec) Reverse() SortSpec {
	if s.Dir == Descending {
		return SortSpec{Key: s.Key, Dir: Ascending}
	}
	return SortSpec{Key: s.Key, Dir: Descending}
}

// Filter keeps records where the lower-cased term is a substring of at
// least one lower-cased field text. An empty term keeps everything.
func Filter[T any](kind *Kind[T], items []T, term string) []T {
	out := slices.Clone(items)
	term = strings.ToLower(term)
	if term == "" {
		return out
	}
	return slices.DeleteFunc(out, func(rec T) bool {
		return !matches(kind, rec, term)
	})
}

func matches[T any](kind *Kind[T], rec T, term string) bool {
	for _, f := range kind.Fields {
		if strings.Contains(strings.ToLower(f.TextOf(rec)), term) {
			return true
		}
	}
	return false
}

// Sort orders a copy of items by spec. Unknown or unsortable keys leave the
// order as delivered. Ties keep their original relative order.
func Sort[T any](kind *Kind[T], items []T, spec SortSpec) []T {
	out := slices.Clone(items)
	if spec.Key == "" {
		return out
	}
	f, ok := kind.Field(spec.Key)
	if !ok || !f.Sortable {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := compareValues(f.Value(a), f.Value(b))
		if spec.Dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Project derives the displayed list: filter, then sort.
// It is a pure function of its inputs.
func Project[T any](kind *Kind[T], items []T, term string, spec SortSpec) []T {
	return Sort(kind, Filter(kind, items, term), spec)
}

// compareValues orders two field values. Strings compare lexicographically,
// numbers numerically and times chronologically. Missing values compare as
// the empty string, so they come first in ascending order.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

// ListState is the state behind one list screen: the last fetched
// collection, the search term, the sort spec and the error banner.
// The displayed list is always recomputed from these.
type ListState[T any] struct {
	kind *Kind[T]

	mu     sync.RWMutex
	items  []T
	search string
	sort   SortSpec
	banner string
}

// NewListState creates an empty, unsorted state for kind.
func NewListState[T any](kind *Kind[T]) *ListState[T] {
	return &ListState[T]{kind: kind, sort: SortSpec{Dir: Ascending}}
}

// Kind returns the entity kind the state belongs to.
func (s *ListState[T]) Kind() *Kind[T] {
	return s.kind
}

// SetItems replaces the collection.
func (s *ListState[T]) SetItems(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
}

// Items returns a copy of the raw collection in backend order.
func (s *ListState[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Find returns the held record with the given id.
func (s *ListState[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.items {
		if s.kind.ID(rec) == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// SetSearch sets the free-text filter.
func (s *ListState[T]) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// Search returns the free-text filter.
func (s *ListState[T]) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// SetSort replaces the sort spec. Unknown or unsortable keys clear the key.
func (s *ListState[T]) SetSort(spec SortSpec) {
	if spec.Dir == "" {
		spec.Dir = Ascending
	}
	if spec.Key != "" {
		if f, ok := s.kind.Field(spec.Key); !ok || !f.Sortable {
			spec.Key = ""
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = spec
}

// Sort returns the current sort spec.
func (s *ListState[T]) Sort() SortSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// RequestSort applies a column selection. Returns false and leaves the
// spec untouched when key is unknown or not sortable.
func (s *ListState[T]) RequestSort(key string) bool {
	f, ok := s.kind.Field(key)
	if !ok || !f.Sortable {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort = s.sort.Toggle(key)
	return true
}

// SetError fills the banner slot.
func (s *ListState[T]) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = msg
}

// ClearError empties the banner slot.
func (s *ListState[T]) ClearError() {
	s.SetError("")
}

// Error returns the banner message, or "".
func (s *ListState[T]) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

// Projection returns the filtered, sorted list to render.
func (s *ListState[T]) Projection() []T {
	s.mu.RLock()
	items, term, spec := s.items, s.search, s.sort
	s.mu.RUnlock()
	return Project(s.kind, items, term, spec)
}
