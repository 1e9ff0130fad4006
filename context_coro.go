//go:build !purego && !race

package fiber

import (
	"unsafe"
)

var _ unsafe.Pointer

// coroutine represents a native Go coroutine instance. It's an opaque
// struct used by the runtime functions.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// defaultContextFactory switches directly between goroutines, without
// involving the Go scheduler.
var defaultContextFactory contextFactory = newCoroContext

// coroSlot wraps a runtime coroutine. A coroutine holds exactly one
// suspended goroutine, and coroswitch swaps the caller with it. Slots
// therefore move between contexts as they switch: a context suspends in
// the slot of the context it resumes.
type coroSlot struct {
	c        *coroutine
	occupant *coroContext
}

// coroContext is an executionContext backed by the runtime's coroutine
// switch.
type coroContext struct {
	// own is the slot created with the context's goroutine, whose exit
	// resumes the occupant of own. Nil for the main context.
	own *coroSlot
	// parked is the slot the context is suspended in, nil while running.
	parked *coroSlot
	// relay, when set, makes the context move to that slot as soon as
	// it is resumed.
	relay     *coroSlot
	releasing bool
	exited    bool
}

func newCoroContext(entry func(), main bool) (executionContext, error) {
	x := &coroContext{}
	if main {
		return x, nil
	}
	x.own = &coroSlot{occupant: x}
	x.parked = x.own
	x.own.c = newcoro(func(*coroutine) { x.run(entry) })
	return x, nil
}

func (x *coroContext) run(entry func()) {
	defer func() {
		p := recover()
		x.exited = true
		// The runtime resumes the occupant of own once this returns.
		if o := x.own.occupant; o != nil {
			o.parked = nil
		}
		x.own.occupant = nil
		if p != nil && p != (releaseSignal{}) {
			panic(p)
		}
	}()
	if x.releasing {
		return
	}
	entry()
	if !x.releasing {
		panic("fiber: context entry returned")
	}
}

func (x *coroContext) switchTo(to executionContext) {
	x.park(to.(*coroContext).parked)
}

// park suspends x in s, resuming its occupant.
func (x *coroContext) park(s *coroSlot) {
	for {
		if o := s.occupant; o != nil {
			o.parked = nil
		}
		s.occupant = x
		x.parked = s
		coroswitch(s.c)

		if r := x.relay; r != nil {
			x.relay = nil
			s = r
			continue
		}
		if !x.releasing {
			return
		}
		if s == x.own {
			panic(releaseSignal{})
		}
		// The releaser is suspended in s, but only the exit of own
		// resumes anything. Swap with the occupant of own, which moves
		// on into s, handing control back to the releaser.
		x.own.occupant.relay = s
		s = x.own
	}
}

func (x *coroContext) release(target executionContext) {
	y := target.(*coroContext)
	if y.own == nil || y.exited {
		return
	}
	y.releasing = true
	for !y.exited {
		x.park(y.parked)
	}
}
