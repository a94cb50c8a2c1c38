package tags

// Set holds tags in normalized comparison form.
type Set map[string]struct{}

// NewSet normalizes the given values into a Set, dropping empties.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add normalizes and inserts a value; empty values are ignored.
func (s Set) Add(value string) {
	if n := Normalize(value); n != "" {
		s[n] = struct{}{}
	}
}

// Has reports membership of the normalized form of value.
func (s Set) Has(value string) bool {
	_, ok := s[Normalize(value)]
	return ok
}

// Intersects reports whether the two sets share any member.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether the set has no members. Empty filter dimensions are
// inactive, never "reject everything".
func (s Set) Empty() bool { return len(s) == 0 }

// Values returns the normalized members in unspecified order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
