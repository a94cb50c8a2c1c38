package tags

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// typeAliases maps each canonical Workshop type tag to the spellings operators
// use for it. Lookups are against the lowercase input token.
var typeAliases = map[string][]string{
	"Video":       {"video", "movie", "mp4", "webm"},
	"Scene":       {"scene", "scenery"},
	"Web":         {"web", "webpage", "html"},
	"Application": {"application", "app"},
	"Wallpaper":   {"wallpaper"},
	"Preset":      {"preset"},
}

// ageAliases maps each canonical age-rating tag to accepted operator tokens,
// including the MPAA-style shorthand the original config format used.
var ageAliases = map[string][]string{
	"Everyone":     {"everyone", "g"},
	"Questionable": {"questionable", "pg13", "pg-13"},
	"Mature":       {"mature", "adult", "r"},
}

// CanonicalTypes lists the canonical type tags in stable order.
var CanonicalTypes = []string{"Video", "Scene", "Web", "Application", "Wallpaper", "Preset"}

// CanonicalAges lists the three-level age scale in stable order.
var CanonicalAges = []string{"Everyone", "Questionable", "Mature"}

// CanonicalType resolves an operator-supplied type token to its canonical
// display tag. Unrecognized tokens pass through title-cased as a best-effort
// literal tag: they either match a real tag or match nothing, never error.
func CanonicalType(raw string) string {
	return resolveAlias(raw, typeAliases)
}

// CanonicalAge resolves an age token the same way CanonicalType does.
func CanonicalAge(raw string) string {
	return resolveAlias(raw, ageAliases)
}

func resolveAlias(raw string, table map[string][]string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return ""
	}
	for canonical, aliases := range table {
		if token == strings.ToLower(canonical) {
			return canonical
		}
		for _, alias := range aliases {
			if token == alias {
				return canonical
			}
		}
	}
	return TitleCase(raw)
}

// TitleCase renders a free-form token the way Workshop display tags are
// spelled ("pixel art" -> "Pixel Art").
func TitleCase(raw string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(raw)))
}
