package fiber

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// runtimeOptions holds configuration options for Runtime creation.
type runtimeOptions struct {
	scheduler      Scheduler
	logger         *logiface.Logger[logiface.Event]
	newContext     contextFactory
	maxFibers      int
	schedulerSet   bool
	goroutineCheck bool
}

// RuntimeOption configures a Runtime instance.
type RuntimeOption interface {
	applyRuntime(*runtimeOptions) error
}

// runtimeOptionImpl implements RuntimeOption.
type runtimeOptionImpl struct {
	applyRuntimeFunc func(*runtimeOptions) error
}

func (r *runtimeOptionImpl) applyRuntime(opts *runtimeOptions) error {
	return r.applyRuntimeFunc(opts)
}

// WithScheduler sets the initial scheduler. By default each Runtime gets
// its own RoundRobinScheduler. A nil scheduler disables scheduling: Yield
// does nothing, and finished fibers hand control to the main fiber.
func WithScheduler(s Scheduler) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.scheduler = s
		opts.schedulerSet = true
		return nil
	}}
}

// WithLogger sets the structured logger used for fiber lifecycle events.
// Lifecycle events are logged at debug level, context switches at trace
// level, and fiber panics at error level.
func WithLogger(logger *logiface.Logger[logiface.Event]) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithMaxFibers limits the number of unfinished fibers, excluding the main
// fiber. Create fails with ErrFiberLimit once the limit is reached. Zero,
// the default, means no limit.
func WithMaxFibers(n int) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		if n < 0 {
			return fmt.Errorf("fiber: invalid max fibers %d", n)
		}
		opts.maxFibers = n
		return nil
	}}
}

// WithGoroutineCheck sets whether every Runtime call verifies that it is
// made from the goroutine of the active fiber. Enabled by default. The
// check costs a stack trace header per call.
func WithGoroutineCheck(enabled bool) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.goroutineCheck = enabled
		return nil
	}}
}

// withContextFactory overrides the build's default context backend.
func withContextFactory(f contextFactory) RuntimeOption {
	return &runtimeOptionImpl{func(opts *runtimeOptions) error {
		opts.newContext = f
		return nil
	}}
}

// resolveRuntimeOptions applies RuntimeOption instances to runtimeOptions.
func resolveRuntimeOptions(opts []RuntimeOption) (*runtimeOptions, error) {
	cfg := &runtimeOptions{
		newContext:     defaultContextFactory,
		goroutineCheck: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRuntime(cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.schedulerSet {
		cfg.scheduler = NewRoundRobinScheduler()
	}
	return cfg, nil
}
