// Package tags provides the pure normalization rules used whenever mural
// compares Workshop tags, operator filter tokens, or resolution strings.
//
// Comparison form is casefolded with separator characters unified ("×" and "*"
// become "x") and internal whitespace removed; display form is never altered.
// Alias tables map operator shorthand for item types and age ratings onto the
// canonical Workshop tag spelling. Keep every rule here data-driven and
// testable; callers must not do their own string surgery on tags.
package tags
