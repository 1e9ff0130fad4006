package fiber

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// panicError carries a panic recovered from a fiber's function to the
// fiber that is resumed after it.
type panicError struct {
	value any
	fiber string
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

func (p *panicError) ErrorWithStack() string {
	return fmt.Sprintf("fiber %q: %v\n\n%s", p.fiber, p.value, p.stack)
}

func (p *panicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

// DebugString renders p and every error it wraps, including the stacks
// of nested fiber panics.
func (p *panicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var unwrap func(error)
	unwrap = func(e error) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		if sb.Len() != 0 {
			sb.WriteByte('\n')
		}
		if p, ok := e.(*panicError); ok {
			sb.WriteString(p.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		if unwrapper, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range unwrapper.Unwrap() {
				unwrap(ue)
			}
		} else if ue := errors.Unwrap(e); ue != nil {
			unwrap(ue)
		}
	}

	unwrap(p)
	return sb.String()
}

func newPanicError(name string, v any) *panicError {
	return &panicError{
		value: v,
		fiber: name,
		stack: debug.Stack(),
	}
}

// releaseSignal unwinds the goroutine of a context that is being
// released. It never escapes the context that raised it.
type releaseSignal struct{}
