// Package daemon owns the pipeline lifecycle: it wires the watcher, work
// queue, worker pool, journal, and metrics endpoint together, enforces
// single-instance execution through a lock file, and drives orderly
// shutdown with one queue sentinel per worker.
package daemon
