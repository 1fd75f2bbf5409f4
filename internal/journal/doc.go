// Package journal persists a per-file processing history backed by SQLite.
//
// The journal is observational: the pipeline consults the in-memory queue
// for work, while the journal records what happened to each discovered file
// so the CLI and metrics endpoint can answer questions after the fact.
package journal
