// Package generator writes synthetic input files for exercising the
// pipeline. Generated files carry a counter-tagged payload and are treated
// by the watcher like any other drop.
package generator
