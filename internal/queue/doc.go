// Package queue defines the task model and the FIFO hand-off channel between
// the directory watcher and the worker pool.
//
// A Task is one input file awaiting or undergoing processing, identified by a
// UUID for log correlation. The Queue delivers each task to exactly one
// receiver, supports bounded-timeout polling so workers can re-check for
// shutdown, and carries distinguished stop sentinels that terminate one worker
// each. Path helpers derive the metadata and processed sibling names for a
// task's file.
//
// Treat this package as the single source of truth for status names; journal
// rows and metadata records both use the Status enum defined here.
package queue
