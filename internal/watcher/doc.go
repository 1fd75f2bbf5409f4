// Package watcher subscribes to filesystem creation events under the input
// directory and enqueues matching regular files onto the work queue. The
// watch is non-recursive and performs no filesystem mutation of its own.
package watcher
