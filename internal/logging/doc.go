// Package logging assembles structured slog loggers and formatting helpers used
// across fileset commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so traversal and catalog code can
// tag log lines with the run identifier, collection, and traversal mode. The
// package also provides a no-op logger for tests and wiring code that cannot fail.
package logging
