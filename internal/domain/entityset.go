package domain

import "fmt"

// MaxEntities bounds how many businesses one analysis may compare.
const MaxEntities = 2

// EntitySet is an ordered label -> FetchResult mapping with at most two
// entries: the target first, then an optional competitor. The bound is
// enforced here rather than left to callers.
type EntitySet struct {
	labels  []string
	results map[string]FetchResult
}

func NewEntitySet() *EntitySet {
	return &EntitySet{results: make(map[string]FetchResult, MaxEntities)}
}

func (s *EntitySet) Add(label string, r FetchResult) error {
	if label == "" {
		return fmt.Errorf("entity label is required")
	}
	if _, dup := s.results[label]; dup {
		return fmt.Errorf("duplicate entity label %q", label)
	}
	if len(s.labels) >= MaxEntities {
		return fmt.Errorf("entity set is full (max %d)", MaxEntities)
	}
	s.labels = append(s.labels, label)
	s.results[label] = r
	return nil
}

// Labels returns the entity labels in insertion order.
func (s *EntitySet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *EntitySet) Get(label string) (FetchResult, bool) {
	r, ok := s.results[label]
	return r, ok
}

func (s *EntitySet) Len() int { return len(s.labels) }
