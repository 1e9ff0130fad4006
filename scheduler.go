package fiber

import (
	"slices"
)

// Scheduler selects the fiber that Runtime.Yield switches to, and is told
// about the lifecycle of every fiber of its Runtime. A Scheduler never
// owns the fibers it tracks. All methods are called from the Runtime's
// active fiber, so implementations need no synchronization.
type Scheduler interface {
	// Next returns the fiber to yield to, or nil if there is none. It
	// must not return the active fiber, a finished fiber, or a fiber it
	// was not told about via OnFiberCreated.
	Next() *Fiber

	// OnFiberCreated registers a new fiber. It is also called for every
	// live fiber when the scheduler is installed with SetScheduler.
	OnFiberCreated(f *Fiber)

	// OnFiberFinished deregisters a fiber whose function returned, or
	// that was closed before it could.
	OnFiberFinished(f *Fiber)

	// OnFiberYieldedTo reports that control is moving to f, whether f
	// came from Next or was targeted by Runtime.YieldTo.
	OnFiberYieldedTo(f *Fiber)
}

// RoundRobinScheduler rotates through fibers in FIFO order. Fibers join
// the rotation behind every fiber already queued, and an explicit yield to
// a fiber fast-forwards the rotation to it, re-queuing the fibers passed
// over in order.
type RoundRobinScheduler struct {
	queue     []*Fiber
	scheduled *Fiber
}

var _ Scheduler = (*RoundRobinScheduler)(nil)

// NewRoundRobinScheduler returns an empty RoundRobinScheduler.
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Next pops the fiber at the front of the queue, pushing the previously
// scheduled fiber to the back.
func (s *RoundRobinScheduler) Next() *Fiber {
	if len(s.queue) == 0 {
		return nil
	}

	last := s.scheduled
	s.scheduled = s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]

	if last != nil {
		s.queue = append(s.queue, last)
	}

	return s.scheduled
}

func (s *RoundRobinScheduler) OnFiberCreated(f *Fiber) {
	if f == nil || f == s.scheduled || slices.Contains(s.queue, f) {
		panic("fiber: round robin scheduler: fiber registered twice")
	}
	s.queue = append(s.queue, f)
}

func (s *RoundRobinScheduler) OnFiberFinished(f *Fiber) {
	if f == nil {
		return
	}
	if s.scheduled == f {
		s.scheduled = nil
	}
	s.queue = slices.DeleteFunc(s.queue, func(e *Fiber) bool { return e == f })
}

// OnFiberYieldedTo rotates the queue until f is the scheduled fiber. f
// must have been registered.
func (s *RoundRobinScheduler) OnFiberYieldedTo(f *Fiber) {
	if f != s.scheduled && !slices.Contains(s.queue, f) {
		panic("fiber: round robin scheduler: yielded to an unregistered fiber")
	}
	for f != s.scheduled {
		s.Next()
	}
}

// Len returns the number of queued fibers, excluding the scheduled one.
func (s *RoundRobinScheduler) Len() int {
	return len(s.queue)
}
