package lib

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FilterFunction formats the input value. Whatever it returns becomes the
// input of the next filter in the chain.
type FilterFunction func(in *Value, params *Params) (string, error)

type Filter struct {
	Name string
	// Requires is the capability the input value must have.
	Requires Capability
	Function FilterFunction
}

// FilterSet is a registry of named filters.
type FilterSet struct {
	mu      sync.RWMutex
	filters map[string]*Filter
}

func NewFilterSet(filters ...*Filter) *FilterSet {
	set := &FilterSet{filters: make(map[string]*Filter, len(filters))}
	for _, filter := range filters {
		set.filters[filter.Name] = filter
	}
	return set
}

func (s *FilterSet) Register(filter *Filter) error {
	if filter == nil || filter.Name == "" || filter.Function == nil {
		return fmt.Errorf("filter must have a name and a function")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.filters[filter.Name]; exists {
		return fmt.Errorf("filter '%s' is already registered", filter.Name)
	}
	s.filters[filter.Name] = filter
	return nil
}

func (s *FilterSet) Replace(filter *Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[filter.Name] = filter
}

func (s *FilterSet) Get(name string) (*Filter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter, ok := s.filters[name]
	return filter, ok
}

func (s *FilterSet) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s *FilterSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.filters)
}

// Update returns a new set holding the filters of s overridden by those of
// other. Neither set is modified.
func (s *FilterSet) Update(other *FilterSet) *FilterSet {
	s.mu.RLock()
	updated := NewFilterSet(maps.Values(s.filters)...)
	s.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	for name, filter := range other.filters {
		updated.filters[name] = filter
	}
	return updated
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
