//go:build purego || race

package fiber

// defaultContextFactory hands control between goroutines over channels.
// Race builds use it too, as the runtime coroutine switch is invisible to
// the race detector.
var defaultContextFactory contextFactory = newChanContext
