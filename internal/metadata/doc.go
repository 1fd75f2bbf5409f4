// Package metadata persists the per-task status record as a JSON sibling of
// the input file.
//
// A record exists only while a task is in flight or after it failed: Create
// writes it when processing begins (refusing to overwrite an existing one),
// Update merges a new status, timestamp, and optional error message, and
// Remove deletes it once the task's files land in the output directory. A
// record left in the failed state is a diagnostic artifact and is kept.
//
// Update failures are reported to the caller but must be treated as
// logged-not-propagated: a metadata write must never block the pipeline from
// reporting its own result.
package metadata
