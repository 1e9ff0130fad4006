package fiber

import (
	"github.com/petermattis/goid"
)

// DefaultName is the name given to fibers created without one.
const DefaultName = "Fiber"

const mainFiberName = "Main Fiber"

// noCopy may be embedded into structs which must not be copied after
// first use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Fiber is a cooperatively scheduled unit of execution, owned by a
// Runtime. A Fiber is only ever referenced by pointer, as its identity is
// what schedulers and the Runtime track.
type Fiber struct {
	_         noCopy
	rt        *Runtime
	fn        func()
	ctx       executionContext
	name      string
	gid       int64
	main      bool
	finished  bool
	closed    bool
	releasing bool
}

// Name returns the name the fiber was created with.
func (f *Fiber) Name() string {
	return f.name
}

func (f *Fiber) String() string {
	return f.name
}

// IsActive reports whether f is the fiber currently running on its
// Runtime.
func (f *Fiber) IsActive() bool {
	return f.rt.active == f
}

// IsFinished reports whether f's function has returned, or f was closed
// before it could.
func (f *Fiber) IsFinished() bool {
	return f.finished
}

// IsMainFiber reports whether f represents the goroutine that first used
// its Runtime.
func (f *Fiber) IsMainFiber() bool {
	return f.main
}

// Close destroys f. An unfinished fiber is finished without being
// resumed, and removed from the scheduler; if it was suspended inside its
// function, its deferred calls run before Close returns. Closing the main
// fiber closes the whole Runtime, see Runtime.Close.
//
// Close must be called from the active fiber, and f must not be the active
// fiber unless it is the main fiber. Closing a fiber twice is a no-op.
// Finished fibers release their goroutine without being closed.
func (f *Fiber) Close() error {
	if f.main {
		return f.rt.Close()
	}
	if f.closed {
		return nil
	}
	r := f.rt
	r.checkCaller()
	if f.IsActive() {
		misuse(ErrFiberActive, "cannot close active fiber %q", f.name)
	}
	r.closeFiber(f)
	return r.takePanic()
}

// run is the entry point of every non-main fiber, executed on the fiber's
// own stack the first time it is switched into.
func (f *Fiber) run() {
	r := f.rt
	if !f.IsActive() || f.finished || f.main || f.fn == nil {
		panic("fiber: entered fiber " + f.name + " in an invalid state")
	}
	if r.opts.goroutineCheck {
		f.gid = goid.Get()
	}
	r.reap()

	fn := f.fn
	f.fn = nil
	perr := f.call(fn)
	if f.releasing {
		// fn recovered the unwind.
		panic(releaseSignal{})
	}

	r.finish(f)
	r.dead = append(r.dead, f)

	next := r.main
	if perr != nil {
		r.setPanic(perr)
	} else if r.scheduler != nil {
		if n := r.scheduler.Next(); n != nil {
			next = n
		}
	}
	r.yieldTo(next)

	panic("fiber: finished fiber " + f.name + " was resumed")
}

// call runs fn, converting a panic into an error. Releasing the context
// unwinds through fn, and that must keep propagating.
func (f *Fiber) call(fn func()) (perr *panicError) {
	defer func() {
		if p := recover(); p != nil {
			if p == (releaseSignal{}) {
				panic(p)
			}
			perr = newPanicError(f.name, p)
			if f.releasing {
				f.rt.setPanic(perr)
				panic(releaseSignal{})
			}
		}
	}()
	fn()
	return nil
}
