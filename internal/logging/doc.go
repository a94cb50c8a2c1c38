// Package logging builds the application's slog loggers: a human-oriented
// console handler for interactive use and a JSON handler for files and log
// aggregation, plus helpers for component-scoped loggers and structured
// fields shared across packages.
package logging
