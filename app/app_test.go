package app

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsukikage7/cronpoll/logger"
)

// fakeComponent 阻塞到 ctx 取消的测试组件.
type fakeComponent struct {
	name     string
	startErr error
	log      *eventLog
	started  chan struct{}
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func newFakeComponent(name string, log *eventLog) *fakeComponent {
	return &fakeComponent{
		name:    name,
		log:     log,
		started: make(chan struct{}),
	}
}

func (c *fakeComponent) Start(ctx context.Context) error {
	close(c.started)
	if c.startErr != nil {
		return c.startErr
	}
	<-ctx.Done()
	return nil
}

func (c *fakeComponent) Stop(context.Context) error {
	c.log.add("stop:" + c.name)
	return nil
}

func (c *fakeComponent) Name() string { return c.name }

func newTestApp(opts ...Option) *Application {
	base := []Option{
		Logger(logger.NewNop()),
		Signals(syscall.SIGUSR2),
		GracefulTimeout(time.Second),
	}
	return New(append(base, opts...)...)
}

func TestNew_RequiresLogger(t *testing.T) {
	assert.Panics(t, func() { New() })
}

func TestApplication_Defaults(t *testing.T) {
	a := newTestApp(Name("cronpoll-test"), Version("1.2.3"))
	assert.Equal(t, "cronpoll-test", a.Name())
	assert.Equal(t, "1.2.3", a.Version())
	assert.NoError(t, a.Context().Err())
}

func TestApplication_RunAndStop(t *testing.T) {
	events := &eventLog{}
	first := newFakeComponent("first", events)
	second := newFakeComponent("second", events)

	var cleanups []string
	a := newTestApp(
		RegisterCleanup("late", func(context.Context) error {
			cleanups = append(cleanups, "late")
			return nil
		}, 10),
		RegisterCleanup("early", func(context.Context) error {
			cleanups = append(cleanups, "early")
			return errors.New("ignored")
		}, 1),
	)
	a.Use(first, second)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	<-first.started
	<-second.started
	a.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.ElementsMatch(t, []string{"stop:first", "stop:second"}, events.snapshot())
	assert.Equal(t, []string{"early", "late"}, cleanups)
}

func TestApplication_StopOrder(t *testing.T) {
	events := &eventLog{}
	a := newTestApp()
	first := newFakeComponent("first", events)
	second := newFakeComponent("second", events)
	a.Use(first).Use(second)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()
	<-first.started
	<-second.started
	a.Stop()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"stop:first", "stop:second"}, events.snapshot())
}

func TestApplication_ComponentFailure(t *testing.T) {
	events := &eventLog{}
	boom := errors.New("boom")

	healthy := newFakeComponent("healthy", events)
	broken := newFakeComponent("broken", events)
	broken.startErr = boom

	a := newTestApp()
	a.Use(healthy, broken)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "broken")
		assert.Contains(t, events.snapshot(), "stop:healthy")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after component failure")
	}
}

func TestApplication_Hooks(t *testing.T) {
	var stages []Stage
	var mu sync.Mutex
	record := func(stage Stage) Hook {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, stage)
			return nil
		}
	}

	hooks := NewHooks().
		On(StageBeforeStart, record(StageBeforeStart)).
		On(StageAfterStart, record(StageAfterStart)).
		On(StageBeforeStop, record(StageBeforeStop)).
		On(StageAfterStop, record(StageAfterStop))

	a := newTestApp(WithHooks(hooks))
	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(stages) >= 2
	}, 5*time.Second, 10*time.Millisecond)
	a.Stop()
	require.NoError(t, <-done)

	assert.Equal(t, []Stage{StageBeforeStart, StageAfterStart, StageBeforeStop, StageAfterStop}, stages)
}

func TestApplication_BeforeStartHookFails(t *testing.T) {
	hookErr := errors.New("not ready")
	hooks := NewHooks().On(StageBeforeStart, func(context.Context) error { return hookErr })

	a := newTestApp(WithHooks(hooks))
	err := a.Run()
	assert.ErrorIs(t, err, hookErr)

	// 启动失败后可以再次调用 Run
	assert.NotErrorIs(t, a.Run(), ErrRunning)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestApplication_RegisterCloser(t *testing.T) {
	closed := false
	a := newTestApp(RegisterCloser("closer", closerFunc(func() error {
		closed = true
		return nil
	}), 0))

	done := make(chan error, 1)
	go func() { done <- a.Run() }()
	a.Stop()
	require.NoError(t, <-done)
	assert.True(t, closed)
}
