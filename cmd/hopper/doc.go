// Command hopper is the operator CLI for the file processing pipeline. It
// runs the daemon in the foreground, inspects the processing journal, writes
// test files, and manages configuration.
package main
