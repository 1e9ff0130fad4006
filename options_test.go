package fiber

import (
	"bytes"
	"errors"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

func TestResolveRuntimeOptionsDefaults(t *testing.T) {
	r := require.New(t)

	cfg, err := resolveRuntimeOptions(nil)
	r.NoError(err)
	r.IsType(&RoundRobinScheduler{}, cfg.scheduler)
	r.True(cfg.goroutineCheck)
	r.Zero(cfg.maxFibers)
	r.Nil(cfg.logger)
	r.NotNil(cfg.newContext)

	other, err := resolveRuntimeOptions(nil)
	r.NoError(err)
	r.NotSame(cfg.scheduler, other.scheduler)
}

func TestResolveRuntimeOptions(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	logger := newTestLogger(&buf)
	cfg, err := resolveRuntimeOptions([]RuntimeOption{
		nil,
		WithScheduler(nil),
		WithLogger(logger),
		WithMaxFibers(3),
		WithGoroutineCheck(false),
	})
	r.NoError(err)
	r.Nil(cfg.scheduler)
	r.Same(logger, cfg.logger)
	r.Equal(3, cfg.maxFibers)
	r.False(cfg.goroutineCheck)
}

func TestNewRuntimeInvalidOption(t *testing.T) {
	r := require.New(t)

	rt, err := NewRuntime(WithMaxFibers(-1))
	r.Error(err)
	r.Nil(rt)

	sentinel := errors.New("sentinel")
	rt, err = NewRuntime(&runtimeOptionImpl{func(*runtimeOptions) error { return sentinel }})
	r.ErrorIs(err, sentinel)
	r.Nil(rt)
}

func TestRuntimeLogging(t *testing.T) {
	forEachBackend(t, func(t *testing.T, factory contextFactory) {
		r := require.New(t)

		var buf bytes.Buffer
		rt := newTestRuntime(t, factory, WithLogger(newTestLogger(&buf)))

		worker := mustCreate(t, rt, "worker", func() {
			panic("boom")
		})
		r.PanicsWithError("boom", func() { rt.YieldTo(worker) })
		r.NoError(rt.Close())

		out := buf.String()
		r.Contains(out, `"msg":"main fiber created"`)
		r.Contains(out, `"msg":"fiber created"`)
		r.Contains(out, `"fiber":"worker"`)
		r.Contains(out, `"from":"Main Fiber","to":"worker","msg":"switch"`)
		r.Contains(out, `"lvl":"err","fiber":"worker","err":"boom"`)
		r.Contains(out, `"msg":"fiber panicked"`)
		r.Contains(out, `"msg":"fiber finished"`)
		r.Contains(out, `"msg":"runtime closed"`)
	})
}

func TestRuntimeLoggingLevel(t *testing.T) {
	forEachBackend(t, func(t *testing.T, factory contextFactory) {
		r := require.New(t)

		var buf bytes.Buffer
		logger := stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField(``)),
			stumpy.L.WithLevel(logiface.LevelInformational),
		).Logger()
		rt := newTestRuntime(t, factory, WithLogger(logger))

		f := mustCreate(t, rt, "quiet", func() {})
		rt.YieldTo(f)
		r.True(f.IsFinished())
		r.Empty(buf.String())
	})
}
