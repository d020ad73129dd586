// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface, a Workers aggregate that allows
// running multiple workers in a unified way, and a bounded Pool used to
// run CPU-heavy jobs such as password hashing off the request goroutines.
package workers

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations must not block: long-running work is expected to happen
// in goroutines spawned by Run.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run() {
//	    go w.loop()
//	}
type Worker interface {
	Run()
}

// Stopper is implemented by workers that own goroutines which must be
// released on shutdown.
type Stopper interface {
	Stop()
}
