// Package worker runs a fixed pool of goroutines that poll the work queue
// and hand each claimed task to the processor. Workers share nothing but
// the queue; a task failure never takes a worker down.
package worker
