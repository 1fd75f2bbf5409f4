// Package pipeline defines shared vocabulary consumed by the file state
// machine, the worker pool, and the watcher.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag each step
//     failure (read, write, relocate, metadata) so callers can classify
//     outcomes with errors.Is.
//   - Context helpers that stamp task IDs and worker IDs for logging.
//
// Use these helpers when wiring new processing steps so failure handling and
// log correlation stay uniform across the pipeline.
package pipeline
