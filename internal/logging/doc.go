// Package logging assembles structured slog loggers and formatting helpers used
// across capestudio.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers so packaging and interception code tag log
// lines with item identifiers, piece UUIDs, and per-exchange correlation
// tokens. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
