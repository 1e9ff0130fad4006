package fiber

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Create, and used as the panic cause for
	// control transfers, once the Runtime has been closed.
	ErrClosed = errors.New("fiber: runtime closed")

	// ErrNilFunc is returned by Create when no function is given.
	ErrNilFunc = errors.New("fiber: nil function")

	// ErrFiberLimit is returned by Create when the Runtime already holds
	// the maximum number of live fibers, see WithMaxFibers.
	ErrFiberLimit = errors.New("fiber: live fiber limit reached")

	// ErrNilFiber indicates a control transfer to a nil fiber.
	ErrNilFiber = errors.New("fiber: nil fiber")

	// ErrFiberActive indicates an attempt to switch into, or close, the
	// fiber that is currently running.
	ErrFiberActive = errors.New("fiber: fiber is active")

	// ErrFiberFinished indicates an attempt to switch into a fiber whose
	// function has already returned.
	ErrFiberFinished = errors.New("fiber: fiber is finished")

	// ErrFiberClosed indicates use of a fiber after Fiber.Close.
	ErrFiberClosed = errors.New("fiber: fiber is closed")

	// ErrNoActiveFiber indicates a control transfer while no fiber is
	// running, which only happens before the main fiber exists.
	ErrNoActiveFiber = errors.New("fiber: no active fiber")

	// ErrForeignRuntime indicates use of a fiber with a Runtime other
	// than the one that created it.
	ErrForeignRuntime = errors.New("fiber: fiber belongs to another runtime")

	// ErrForeignGoroutine indicates use of a Runtime from a goroutine
	// other than the one of its active fiber.
	ErrForeignGoroutine = errors.New("fiber: runtime used from a foreign goroutine")

	// ErrInvalidSchedule indicates a Scheduler returned a fiber that
	// cannot be switched into.
	ErrInvalidSchedule = errors.New("fiber: scheduler returned an invalid fiber")
)

// misuse panics with err, annotated with the given details. Misuse is a
// programming error that corrupts the single active fiber invariant, so
// it is never returned.
func misuse(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{err}, args...)...))
}
