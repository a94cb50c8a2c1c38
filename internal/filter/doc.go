// Package filter compiles the operator's configured filter into an immutable
// Spec and evaluates catalog items against it: OR within a dimension, AND
// across dimensions, exclusions dominant.
package filter
