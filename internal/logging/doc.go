// Package logging centralizes log/slog construction for the daemon and CLI.
//
// It builds console or JSON handlers from configuration, fans output out to
// stdout and the log file under the configured log directory, and exposes
// attribute helpers plus context-derived fields (task ID, worker ID) so every
// component logs with the same shape. NewNop returns a discard logger for
// tests.
//
// Construct loggers through this package rather than calling slog directly so
// field names and formats stay consistent across the pipeline.
package logging
