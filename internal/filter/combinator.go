package filter

import (
	"strings"

	"mural/internal/tags"
	"mural/internal/workshop"
)

// Accept reports whether an item passes the filter: OR within a dimension,
// AND across dimensions, with exclusions dominant. Pure, no I/O; evaluation
// order is an implementation detail and never changes the result.
func (s Spec) Accept(it workshop.Item) bool {
	title := strings.ToLower(it.Title)
	for _, sub := range s.TitleExcludes {
		if strings.Contains(title, sub) {
			return false
		}
	}

	if _, banned := s.CreatorExcludes[it.CreatorID]; banned {
		return false
	}

	present := it.NormalizedTags()

	if s.Exclude.Intersects(present) {
		return false
	}

	if !s.Types.Empty() && !s.Types.Intersects(present) {
		return false
	}

	if !s.Ages.Empty() && !s.acceptAge(it, present) {
		return false
	}

	if !s.Genres.Empty() && !s.Genres.Intersects(present) {
		return false
	}

	if len(s.Resolutions) > 0 && !s.acceptResolution(it, present) {
		return false
	}

	return true
}

// acceptAge checks the age tags, falling back to the structured age-rating
// field some items carry instead of a visible tag.
func (s Spec) acceptAge(it workshop.Item, present tags.Set) bool {
	if s.Ages.Intersects(present) {
		return true
	}
	if age := it.AgeTag(); age != "" {
		return s.Ages.Has(age)
	}
	return false
}

// acceptResolution matches any requested resolution against the item's tags,
// falling back to the structured resolution field when no spelling is tagged.
func (s Spec) acceptResolution(it workshop.Item, present tags.Set) bool {
	for _, want := range s.Resolutions {
		if want.Intersects(present) {
			return true
		}
	}
	if field := it.ResolutionField(); field != "" {
		n := tags.Normalize(field)
		for _, want := range s.Resolutions {
			if _, ok := want[n]; ok {
				return true
			}
		}
	}
	return false
}
