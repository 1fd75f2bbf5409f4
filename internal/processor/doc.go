// Package processor drives one task at a time through the file pipeline:
// record processing metadata, read the source, fold it to uppercase, stage
// the processed sibling, then relocate both files into the output directory.
//
// Failures terminate the task, never the worker. Each failed task leaves a
// metadata record beside the original file carrying the error text.
package processor
