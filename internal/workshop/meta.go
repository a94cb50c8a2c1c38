package workshop

import (
	"strings"

	"mural/internal/tags"
)

// builtinTags are the tag families the Workshop reserves for type, age, and
// resolution; everything else on an item counts as a genre.
var builtinTags = func() tags.Set {
	s := tags.NewSet(tags.CanonicalAges...)
	for _, t := range tags.CanonicalTypes {
		s.Add(t)
	}
	return s
}()

// TypeTags returns the canonical type tags present on the item.
func (it Item) TypeTags() []string {
	present := it.NormalizedTags()
	var out []string
	for _, canonical := range tags.CanonicalTypes {
		if present.Has(canonical) {
			out = append(out, canonical)
		}
	}
	return out
}

// AgeTag returns the item's age rating from its tags, falling back to the
// structured age-rating fields, or "" when absent.
func (it Item) AgeTag() string {
	present := it.NormalizedTags()
	for _, canonical := range tags.CanonicalAges {
		if present.Has(canonical) {
			return canonical
		}
	}
	for _, key := range []string{"age rating", "agerating", "age_rating"} {
		if v := strings.TrimSpace(it.KVTags[key]); v != "" {
			canonical := tags.CanonicalAge(v)
			for _, known := range tags.CanonicalAges {
				if canonical == known {
					return canonical
				}
			}
		}
	}
	return ""
}

// ResolutionStrings returns the item's resolutions (tagged or structured) in
// display form, deduplicated by comparison form.
func (it Item) ResolutionStrings() []string {
	var raw []string
	if v := it.ResolutionField(); v != "" {
		raw = append(raw, tags.ResolutionVariants(v)...)
	}
	for _, t := range it.Tags {
		if tags.IsResolution(t) {
			raw = append(raw, tags.ResolutionVariants(t)...)
		}
	}
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, r := range raw {
		n := tags.Normalize(r)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, r)
	}
	return out
}

// GenreTags returns up to limit non-builtin, non-resolution tags in display
// form, first-seen order.
func (it Item) GenreTags(limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range it.Tags {
		n := tags.Normalize(t)
		if n == "" || builtinTags.Has(t) || tags.IsResolution(t) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
