package fiber

// executionContext is the saved execution state of a fiber.
//
// Exactly one context of a Runtime is running at a time. switchTo and
// release must only be called on the running context, from its own
// goroutine.
type executionContext interface {
	// switchTo suspends x and resumes to. It returns once another
	// context switches back into x.
	switchTo(to executionContext)

	// release tears down target, which must not be running. A target
	// that was suspended mid-function is unwound, running its deferred
	// calls, before release returns. Releasing a main context, or a
	// context already released, does nothing.
	release(target executionContext)
}

// contextFactory creates the context of a fiber. For a main fiber the
// context wraps the calling goroutine and entry is nil. Otherwise entry
// is run on a new stack, the first time the context is switched into,
// and must never return normally.
type contextFactory func(entry func(), main bool) (executionContext, error)
