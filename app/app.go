// Package app 提供进程生命周期管理.
//
// Application 并发启动所有组件，等待系统信号或任一组件失败后，
// 在优雅关闭超时内按注册顺序停止组件并执行清理任务.
//
//	a := app.New(
//	    app.Name("cronpoll"),
//	    app.Logger(log),
//	    app.GracefulTimeout(30*time.Second),
//	)
//	a.Use(schedulerComponent, metricsServer)
//	if err := a.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Tsukikage7/cronpoll/logger"
)

// ErrRunning 应用正在运行.
var ErrRunning = errors.New("app: 应用正在运行")

// Component 由 Application 管理生命周期的组件.
type Component interface {
	// Start 启动组件，可以阻塞到 ctx 取消.
	// 返回错误会触发整个应用关闭.
	Start(ctx context.Context) error

	// Stop 停止组件，ctx 携带优雅关闭超时.
	Stop(ctx context.Context) error

	// Name 组件名称.
	Name() string
}

// Application 应用程序，管理多个组件的生命周期.
type Application struct {
	opts       *options
	components []Component
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
	running    bool
}

// New 创建应用程序.
func New(opts ...Option) *Application {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		panic("app: logger is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Application{
		opts:   o,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Use 注册组件.
func (a *Application) Use(components ...Component) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.components = append(a.components, components...)
	return a
}

// Run 运行应用程序.
//
// 阻塞直到收到关闭信号、调用 Stop 或任一组件启动失败.
// 组件失败时返回该错误.
func (a *Application) Run() error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrRunning
	}
	a.running = true
	components := slices.Clone(a.components)
	a.mu.Unlock()

	if err := a.opts.hooks.run(a.ctx, StageBeforeStart); err != nil {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		return fmt.Errorf("app: before start: %w", err)
	}

	a.opts.logger.With(
		logger.String("name", a.opts.name),
		logger.String("version", a.opts.version),
		logger.Int("components", len(components)),
	).Info("[App] starting")

	g, gctx := errgroup.WithContext(a.ctx)
	for _, c := range components {
		g.Go(func() error {
			a.opts.logger.With(logger.String("component", c.Name())).Info("[App] starting component")
			if err := c.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			return nil
		})
	}

	if err := a.opts.hooks.run(a.ctx, StageAfterStart); err != nil {
		a.opts.logger.With(logger.Err(err)).Error("[App] after start hook failed")
	}

	a.wait(gctx)
	a.shutdown(components)

	// 组件的 Start 在 ctx 取消后返回
	a.cancel()
	err := g.Wait()
	if err != nil {
		a.opts.logger.With(logger.Err(err)).Error("[App] component failed")
	}

	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	a.opts.logger.Info("[App] stopped")
	return err
}

// Stop 主动停止应用程序.
func (a *Application) Stop() {
	a.cancel()
}

// Context 获取应用上下文.
func (a *Application) Context() context.Context {
	return a.ctx
}

// Name 获取应用名称.
func (a *Application) Name() string {
	return a.opts.name
}

// Version 获取应用版本.
func (a *Application) Version() string {
	return a.opts.version
}

// wait 等待系统信号或 ctx 取消.
func (a *Application) wait(ctx context.Context) {
	signals := a.opts.signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.opts.logger.With(logger.String("signal", sig.String())).Info("[App] received signal")
	case <-ctx.Done():
		a.opts.logger.Info("[App] context cancelled")
	}
}

// shutdown 在优雅关闭超时内按注册顺序停止组件.
func (a *Application) shutdown(components []Component) {
	a.opts.logger.With(
		logger.Duration("timeout", a.opts.gracefulTimeout),
	).Info("[App] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.opts.gracefulTimeout)
	defer cancel()

	if err := a.opts.hooks.run(ctx, StageBeforeStop); err != nil {
		a.opts.logger.With(logger.Err(err)).Error("[App] before stop hook failed")
	}

	for _, c := range components {
		a.opts.logger.With(logger.String("component", c.Name())).Info("[App] stopping component")
		if err := c.Stop(ctx); err != nil {
			a.opts.logger.With(
				logger.String("component", c.Name()),
				logger.Err(err),
			).Error("[App] component stop failed")
		}
	}

	a.runCleanups(ctx)

	if err := a.opts.hooks.run(context.Background(), StageAfterStop); err != nil {
		a.opts.logger.With(logger.Err(err)).Error("[App] after stop hook failed")
	}
}

func (a *Application) runCleanups(ctx context.Context) {
	if len(a.opts.cleanups) == 0 {
		return
	}

	cleanups := slices.Clone(a.opts.cleanups)
	slices.SortStableFunc(cleanups, func(x, y Cleanup) int {
		return x.Priority - y.Priority
	})

	for _, c := range cleanups {
		if err := c.Fn(ctx); err != nil {
			a.opts.logger.With(
				logger.String("cleanup", c.Name),
				logger.Err(err),
			).Error("[App] cleanup failed")
			continue
		}
		a.opts.logger.With(logger.String("cleanup", c.Name)).Debug("[App] cleanup done")
	}
}
