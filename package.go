// Package fiber provides cooperatively scheduled fibers for Go, with a
// pluggable scheduler deciding which fiber runs next.
//
// A fiber is a unit of execution with its own stack that runs until it
// explicitly yields control or returns. Fibers belong to a Runtime. The
// goroutine that first uses a Runtime becomes its main fiber; every other
// fiber is created with Runtime.Create and only ever runs when control is
// handed to it by Runtime.Yield or Runtime.YieldTo. At most one fiber of a
// Runtime is active at any instant, so fibers of the same Runtime never
// run in parallel and need no synchronization between each other.
//
// Runtime.Yield asks the installed Scheduler for the next fiber to run.
// The default Scheduler is a RoundRobinScheduler, and any implementation
// of the Scheduler interface may be installed with Runtime.SetScheduler.
// Runtime.YieldTo bypasses the selection and switches to a specific
// fiber, informing the scheduler so that its rotation stays consistent.
//
// When a fiber's function returns, the fiber is marked finished, removed
// from the scheduler, and control passes to the scheduler's next choice,
// or to the main fiber if there is none. The fiber resumed next releases
// the finished fiber's goroutine. A panic inside a fiber finishes
// the fiber and hands control to the main fiber, where the panic is
// re-raised wrapped with the stack trace of the fiber that panicked.
//
// Two context-switch backends exist. The default switches directly
// between goroutines using the runtime's coroutine primitives, which it
// reaches with go:linkname; toolchains that reject such references need
// -ldflags=-checklinkname=0. Building with the purego tag, or with -race,
// selects a backend that hands control between goroutines over channels
// instead.
package fiber
