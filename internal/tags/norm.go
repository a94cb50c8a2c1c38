package tags

import (
	"regexp"
	"strings"
)

var resolutionPattern = regexp.MustCompile(`^\s*(\d+)\s*(?:x|×)\s*(\d+)\s*$`)

// Normalize reduces a tag to its comparison form: lowercase, multiplication
// signs unified to "x", and all spaces removed. Display strings keep their
// original spelling; only comparisons go through here.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "×", "x")
	s = strings.ReplaceAll(s, "*", "x")
	return strings.ReplaceAll(s, " ", "")
}

// IsResolution reports whether a raw tag looks like a "W x H" pair in any of
// the accepted spellings.
func IsResolution(s string) bool {
	return resolutionPattern.MatchString(strings.ReplaceAll(s, "X", "x"))
}

// ResolutionVariants expands a resolution string into the three spellings the
// Workshop uses interchangeably ("W x H", "WxH", "W × H"). Inputs that do not
// parse as a resolution are returned verbatim so they degrade to literal tag
// matches that simply never hit.
func ResolutionVariants(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	unified := strings.NewReplacer("×", "x", "X", "x", "*", "x").Replace(s)
	m := resolutionPattern.FindStringSubmatch(unified)
	if m == nil {
		return []string{s}
	}
	w, h := m[1], m[2]
	return []string{w + " x " + h, w + "x" + h, w + " × " + h}
}

// NormalizedVariantSet expands a resolution string and normalizes every
// spelling into a comparison set.
func NormalizedVariantSet(s string) Set {
	variants := ResolutionVariants(s)
	if len(variants) == 0 {
		return nil
	}
	return NewSet(variants...)
}
