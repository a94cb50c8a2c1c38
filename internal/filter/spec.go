package filter

import (
	"regexp"
	"strings"

	"mural/internal/config"
	"mural/internal/tags"
)

// Spec is the compiled operator filter. Dimensions hold normalized comparison
// sets; the Display slices keep the operator's spelling for server queries and
// status output. An empty dimension is inactive.
type Spec struct {
	Genres       tags.Set
	GenreDisplay []string

	Types       tags.Set
	TypeDisplay []string

	Ages       tags.Set
	AgeDisplay []string

	// One variant set per requested resolution; an item matches a
	// resolution when it carries any spelling of it.
	Resolutions       []tags.Set
	ResolutionDisplay []string

	Exclude        tags.Set
	ExcludeDisplay []string

	TitleExcludes   []string
	CreatorExcludes map[string]struct{}
}

var steamID64Pattern = regexp.MustCompile(`\d{17}`)

// FromConfig compiles the [filters] section into a Spec. Malformed tokens
// never error; they become literals that match nothing.
func FromConfig(f config.Filters) Spec {
	spec := Spec{
		Genres:          tags.Set{},
		Types:           tags.Set{},
		Ages:            tags.Set{},
		Exclude:         tags.Set{},
		CreatorExcludes: map[string]struct{}{},
	}

	// genres = show_only ∪ tags, operator spelling preserved for queries.
	for _, raw := range append(config.SplitList(f.ShowOnly), config.SplitList(f.Tags)...) {
		if spec.Genres.Has(raw) {
			continue
		}
		spec.Genres.Add(raw)
		spec.GenreDisplay = append(spec.GenreDisplay, raw)
	}

	for _, raw := range config.SplitList(f.Types) {
		canonical := tags.CanonicalType(raw)
		if canonical == "" || spec.Types.Has(canonical) {
			continue
		}
		spec.Types.Add(canonical)
		spec.TypeDisplay = append(spec.TypeDisplay, canonical)
	}

	for _, raw := range config.SplitList(f.Age) {
		canonical := tags.CanonicalAge(raw)
		if canonical == "" || spec.Ages.Has(canonical) {
			continue
		}
		spec.Ages.Add(canonical)
		spec.AgeDisplay = append(spec.AgeDisplay, canonical)
	}

	seenRes := tags.Set{}
	for _, raw := range config.SplitList(f.Resolution) {
		variants := tags.ResolutionVariants(raw)
		if len(variants) == 0 || seenRes.Has(variants[0]) {
			continue
		}
		seenRes.Add(variants[0])
		spec.Resolutions = append(spec.Resolutions, tags.NewSet(variants...))
		// The "W x H" spelling leads the variant list and is what the
		// Workshop uses as the visible tag.
		spec.ResolutionDisplay = append(spec.ResolutionDisplay, variants[0])
	}

	for _, raw := range config.SplitList(f.Exclude) {
		if spec.Exclude.Has(raw) {
			continue
		}
		spec.Exclude.Add(raw)
		spec.ExcludeDisplay = append(spec.ExcludeDisplay, raw)
	}

	seenTitle := map[string]struct{}{}
	for _, raw := range config.SplitList(f.TitleExcludeContains) {
		folded := strings.ToLower(raw)
		if _, dup := seenTitle[folded]; dup {
			continue
		}
		seenTitle[folded] = struct{}{}
		spec.TitleExcludes = append(spec.TitleExcludes, folded)
	}

	for _, raw := range config.SplitList(f.CreatorExcludeIDs) {
		id := raw
		if m := steamID64Pattern.FindString(raw); m != "" {
			id = m
		}
		spec.CreatorExcludes[id] = struct{}{}
	}

	return spec
}

// IncludeQueryTags returns the display-form tags the fetcher queries for, one
// server query each: genres as written, canonical types and ages, and the
// "W x H" spelling of every requested resolution. First-seen dedup.
func (s Spec) IncludeQueryTags() []string {
	seen := tags.Set{}
	var out []string
	add := func(values []string) {
		for _, v := range values {
			if seen.Has(v) {
				continue
			}
			seen.Add(v)
			out = append(out, v)
		}
	}
	add(s.GenreDisplay)
	add(s.TypeDisplay)
	add(s.AgeDisplay)
	add(s.ResolutionDisplay)
	return out
}

// ExcludeQueryTags returns the exclusion tags in operator spelling for the
// server-side excludedtags list. Server exclusion is always safe: it can only
// remove items the local combinator would reject anyway.
func (s Spec) ExcludeQueryTags() []string {
	return append([]string(nil), s.ExcludeDisplay...)
}

// Empty reports whether no dimension is active.
func (s Spec) Empty() bool {
	return s.Genres.Empty() && s.Types.Empty() && s.Ages.Empty() &&
		len(s.Resolutions) == 0 && s.Exclude.Empty() &&
		len(s.TitleExcludes) == 0 && len(s.CreatorExcludes) == 0
}
