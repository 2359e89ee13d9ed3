package newton

// RootSet records roots in the order they were first reached. A root's index
// picks its palette color, so keeping the set across frames keeps colors
// stable while the view moves.
type RootSet struct {
	roots    []complex128
	capacity int
}

// NewRootSet returns a set that accepts new roots until it holds capacity
// entries. Seed roots are kept in order even beyond capacity.
func NewRootSet(capacity int, seed ...complex128) *RootSet {
	roots := make([]complex128, len(seed), max(len(seed), capacity))
	copy(roots, seed)
	return &RootSet{roots: roots, capacity: capacity}
}

// Index returns the index of the first recorded root AlmostEqual to z, or -1.
func (s *RootSet) Index(z complex128) int {
	for i, r := range s.roots {
		if AlmostEqual(r, z) {
			return i
		}
	}
	return -1
}

// Match returns z's index, recording z if it is new and the set is not full.
// A new root arriving at a full set yields -1; existing entries are never
// replaced.
func (s *RootSet) Match(z complex128) (index int, added bool) {
	if i := s.Index(z); i >= 0 {
		return i, false
	}
	if len(s.roots) >= s.capacity {
		return -1, false
	}
	s.roots = append(s.roots, z)
	return len(s.roots) - 1, true
}

func (s *RootSet) Len() int {
	return len(s.roots)
}

// Roots returns a copy of the recorded roots in discovery order.
func (s *RootSet) Roots() []complex128 {
	out := make([]complex128, len(s.roots))
	copy(out, s.roots)
	return out
}
