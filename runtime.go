package fiber

import (
	"errors"
	"fmt"
	"slices"

	"github.com/joeycumines/logiface"
	"github.com/petermattis/goid"
)

// Runtime holds the fibers of one cooperative thread of execution: the
// main fiber, the active fiber, the installed scheduler and the registry
// of live fibers.
//
// The first goroutine to use a Runtime becomes its main fiber. From then
// on, a Runtime must only be used from the goroutine of its active fiber,
// which includes the functions of fibers created by it. A Runtime is not
// safe for concurrent use, and never needs to be: its fibers hand control
// to each other explicitly.
type Runtime struct {
	_         noCopy
	opts      *runtimeOptions
	logger    *logiface.Logger[logiface.Event]
	scheduler Scheduler
	main      *Fiber
	active    *Fiber
	// fibers lists unfinished fibers in creation order.
	fibers []*Fiber
	// owned lists non-main fibers whose context has not been released.
	owned []*Fiber
	// dead lists finished fibers waiting for the next resumed fiber to
	// release their context.
	dead    []*Fiber
	pending error
	closed  bool
}

// NewRuntime returns a Runtime configured by opts. The main fiber is
// created lazily, by the first call to MainFiber or Create.
func NewRuntime(opts ...RuntimeOption) (*Runtime, error) {
	cfg, err := resolveRuntimeOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		opts:      cfg,
		logger:    cfg.logger,
		scheduler: cfg.scheduler,
	}, nil
}

// MainFiber returns the fiber representing the goroutine that first used
// r, creating it if this is that first use. The main fiber starts out
// active, and is registered with the scheduler.
func (r *Runtime) MainFiber() *Fiber {
	if r.main != nil {
		r.checkCaller()
		return r.main
	}
	if r.closed {
		misuse(ErrClosed, "cannot create main fiber")
	}

	ctx, err := r.opts.newContext(nil, true)
	if err != nil {
		panic(fmt.Errorf("fiber: main fiber context: %w", err))
	}
	f := &Fiber{
		rt:   r,
		ctx:  ctx,
		name: mainFiberName,
		main: true,
	}
	if r.opts.goroutineCheck {
		f.gid = goid.Get()
	}
	r.main = f
	r.active = f
	r.register(f)
	if r.scheduler != nil {
		r.scheduler.OnFiberYieldedTo(f)
	}

	r.logger.Debug().
		Str("fiber", f.name).
		Int64("goroutine", f.gid).
		Log("main fiber created")

	return f
}

// ActiveFiber returns the fiber currently running, or nil if the main
// fiber has not been created yet or r is closed.
func (r *Runtime) ActiveFiber() *Fiber {
	return r.active
}

// Scheduler returns the installed scheduler, which may be nil.
func (r *Runtime) Scheduler() Scheduler {
	return r.scheduler
}

// Create returns a new fiber that will run fn once it is first switched
// into. The fiber is registered with the scheduler, and an empty name is
// replaced by DefaultName.
//
// When fn returns, the fiber is finished and control passes to the fiber
// chosen by the scheduler, or to the main fiber if there is no scheduler
// or it offers no fiber. That fiber releases the finished fiber's
// goroutine as soon as it resumes, so finished fibers need not be closed.
func (r *Runtime) Create(fn func(), name string) (*Fiber, error) {
	if r.closed {
		return nil, ErrClosed
	}
	r.MainFiber()
	if fn == nil {
		return nil, ErrNilFunc
	}

	if n := r.opts.maxFibers; n > 0 && len(r.fibers)-1 >= n {
		return nil, fmt.Errorf("%w: %d live fibers", ErrFiberLimit, n)
	}
	if name == "" {
		name = DefaultName
	}

	f := &Fiber{
		rt:   r,
		fn:   fn,
		name: name,
	}
	ctx, err := r.opts.newContext(f.run, false)
	if err != nil {
		return nil, fmt.Errorf("fiber: create %q: %w", name, err)
	}
	f.ctx = ctx
	r.owned = append(r.owned, f)
	r.register(f)

	r.logger.Debug().
		Str("fiber", f.name).
		Int("live", len(r.fibers)).
		Log("fiber created")

	return f, nil
}

// YieldTo switches to target, suspending the active fiber until some
// fiber switches back to it. The scheduler is informed before the switch.
//
// Switching to a nil, active, finished or closed fiber, to a fiber of
// another Runtime, or switching from a goroutine other than the active
// fiber's, panics with an error wrapping the matching Err* value.
//
// If a fiber panics, control is handed to the main fiber, and the panic is
// re-raised by the YieldTo or Yield call the main fiber resumes from.
func (r *Runtime) YieldTo(target *Fiber) {
	r.checkCaller()
	r.yieldTo(target)
}

// Yield switches to the fiber chosen by the scheduler. If there is no
// scheduler, or it has no fiber to offer, Yield returns immediately and
// the active fiber keeps running.
func (r *Runtime) Yield() {
	r.checkCaller()
	if r.closed {
		misuse(ErrClosed, "cannot yield")
	}
	if r.scheduler == nil {
		return
	}
	next := r.scheduler.Next()
	if next == nil {
		return
	}
	if next.rt != r || next.closed || next.finished || next.IsActive() {
		misuse(ErrInvalidSchedule, "cannot switch to %q", next.name)
	}
	r.yieldTo(next)
}

// SetScheduler installs s. A nil s removes the scheduler. Otherwise s is
// told about every live fiber, in creation order, and about the active
// fiber, so that its rotation starts from the running fiber. Installing
// the scheduler already installed does nothing.
func (r *Runtime) SetScheduler(s Scheduler) {
	r.checkCaller()
	if r.closed {
		misuse(ErrClosed, "cannot set scheduler")
	}
	if s == r.scheduler {
		return
	}
	if s != nil {
		for _, f := range r.fibers {
			s.OnFiberCreated(f)
		}
		if r.active != nil {
			s.OnFiberYieldedTo(r.active)
		}
	}
	r.scheduler = s

	r.logger.Debug().
		Bool("enabled", s != nil).
		Int("live", len(r.fibers)).
		Log("scheduler installed")
}

// Close destroys every fiber of r, then the main fiber. Fibers suspended
// inside their function are unwound, running their deferred calls. If any
// of those calls panics, the panic is returned as an error.
//
// Close must be called from the main fiber while it is active. Closing r
// twice is a no-op.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	if r.main == nil {
		r.closed = true
		r.scheduler = nil
		return nil
	}
	r.checkCaller()
	if r.active != r.main {
		misuse(ErrFiberActive, "runtime must be closed from the main fiber, not %q", r.active.name)
	}

	for len(r.owned) != 0 {
		r.closeFiber(r.owned[0])
	}
	r.finish(r.main)
	r.main.closed = true
	r.closed = true
	r.active = nil
	r.scheduler = nil

	r.logger.Debug().Log("runtime closed")

	return r.takePanic()
}

func (r *Runtime) yieldTo(target *Fiber) {
	switch {
	case r.closed:
		misuse(ErrClosed, "cannot switch")
	case target == nil:
		misuse(ErrNilFiber, "cannot switch")
	case target.rt != r:
		misuse(ErrForeignRuntime, "cannot switch to %q", target.name)
	case target.closed:
		misuse(ErrFiberClosed, "cannot switch to %q", target.name)
	case target.finished:
		misuse(ErrFiberFinished, "cannot switch to %q", target.name)
	case r.active == nil:
		misuse(ErrNoActiveFiber, "cannot switch to %q", target.name)
	case target.IsActive():
		misuse(ErrFiberActive, "cannot switch to %q", target.name)
	}

	cur := r.active
	if r.scheduler != nil {
		r.scheduler.OnFiberYieldedTo(target)
	}
	r.active = target

	r.logger.Trace().
		Str("from", cur.name).
		Str("to", target.name).
		Log("switch")

	cur.ctx.switchTo(target.ctx)

	if r.active != cur {
		panic("fiber: resumed fiber " + cur.name + " is not active")
	}
	r.reap()
	if err := r.takePanic(); err != nil {
		panic(err)
	}
}

func (r *Runtime) register(f *Fiber) {
	r.fibers = append(r.fibers, f)
	if r.scheduler != nil {
		r.scheduler.OnFiberCreated(f)
	}
}

// finish marks f finished and deregisters it.
func (r *Runtime) finish(f *Fiber) {
	f.finished = true
	if r.scheduler != nil {
		r.scheduler.OnFiberFinished(f)
	}
	r.fibers = slices.DeleteFunc(r.fibers, func(e *Fiber) bool { return e == f })

	r.logger.Debug().
		Str("fiber", f.name).
		Int("live", len(r.fibers)).
		Log("fiber finished")
}

// closeFiber finishes f if needed and releases its context. f must not be
// the active fiber.
func (r *Runtime) closeFiber(f *Fiber) {
	if !f.finished {
		r.finish(f)
	}
	f.closed = true
	f.fn = nil
	r.dead = slices.DeleteFunc(r.dead, func(e *Fiber) bool { return e == f })
	r.release(f)

	r.logger.Debug().
		Str("fiber", f.name).
		Log("fiber closed")
}

// reap releases the fibers that finished before the active fiber resumed.
func (r *Runtime) reap() {
	dead := r.dead
	r.dead = nil
	for _, f := range dead {
		r.release(f)
		r.logger.Trace().
			Str("fiber", f.name).
			Log("fiber released")
	}
}

// release unwinds the context of f from the active fiber.
func (r *Runtime) release(f *Fiber) {
	r.owned = slices.DeleteFunc(r.owned, func(e *Fiber) bool { return e == f })
	f.releasing = true
	r.active.ctx.release(f.ctx)
	f.releasing = false
}

func (r *Runtime) checkCaller() {
	if !r.opts.goroutineCheck || r.active == nil {
		return
	}
	if g := goid.Get(); g != r.active.gid {
		misuse(ErrForeignGoroutine, "called from goroutine %d, active fiber %q runs on goroutine %d", g, r.active.name, r.active.gid)
	}
}

// setPanic records a fiber panic, to be raised in the main fiber.
func (r *Runtime) setPanic(perr *panicError) {
	r.logger.Err().
		Str("fiber", perr.fiber).
		Err(perr).
		Str("stack", string(perr.stack)).
		Log("fiber panicked")

	if r.pending == nil {
		r.pending = perr
	} else {
		r.pending = errors.Join(r.pending, perr)
	}
}

func (r *Runtime) takePanic() error {
	err := r.pending
	r.pending = nil
	return err
}
