package fiber

// chanContext is an executionContext that runs each fiber on a goroutine
// parked on its own wake channel. A switch sends on the target's channel
// and then receives on the caller's, so exactly one goroutine holds the
// token at a time.
type chanContext struct {
	wake      chan struct{}
	entry     func()
	main      bool
	started   bool
	releasing bool
	exited    bool
	releaser  *chanContext
}

func newChanContext(entry func(), main bool) (executionContext, error) {
	return &chanContext{
		wake:  make(chan struct{}),
		entry: entry,
		main:  main,
	}, nil
}

func (x *chanContext) run() {
	defer func() {
		p := recover()
		x.exited = true
		if p != nil && p != (releaseSignal{}) {
			panic(p)
		}
		if x.releaser != nil {
			x.releaser.wake <- struct{}{}
		}
	}()
	<-x.wake
	x.entry()
	if !x.releasing {
		panic("fiber: context entry returned")
	}
}

func (x *chanContext) switchTo(to executionContext) {
	y := to.(*chanContext)
	if !y.main && !y.started {
		y.started = true
		go y.run()
	}
	y.wake <- struct{}{}
	<-x.wake
	if x.releasing {
		panic(releaseSignal{})
	}
}

func (x *chanContext) release(target executionContext) {
	y := target.(*chanContext)
	if y.main || y.exited {
		return
	}
	if !y.started {
		y.exited = true
		return
	}
	y.releasing = true
	y.releaser = x
	y.wake <- struct{}{}
	<-x.wake
}
