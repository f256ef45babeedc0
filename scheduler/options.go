package scheduler

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tsukikage7/cronpoll/logger"
)

// 默认配置.
const (
	DefaultPollInterval = time.Minute
	DefaultGracePeriod  = 5 * time.Second
)

// Option 调度器配置选项.
type Option func(*options)

// options 调度器内部配置.
type options struct {
	logger         logger.Logger
	clock          clockwork.Clock
	hooks          *Hooks
	metrics        MetricsRecorder
	tracerProvider trace.TracerProvider
	poller         Executor
	worker         Executor
	pollInterval   time.Duration
	gracePeriod    time.Duration
	defaultTimeout time.Duration
	maxConcurrency int
	location       *time.Location
}

// defaultOptions 返回默认配置.
func defaultOptions() *options {
	return &options{
		clock:        clockwork.NewRealClock(),
		metrics:      nopMetrics{},
		pollInterval: DefaultPollInterval,
		gracePeriod:  DefaultGracePeriod,
	}
}

func (o *options) validate() error {
	if o.clock == nil {
		return fmt.Errorf("%w: clock is nil", ErrInvalidOption)
	}
	if o.pollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidOption)
	}
	if o.gracePeriod < 0 {
		return fmt.Errorf("%w: grace period must not be negative", ErrInvalidOption)
	}
	if o.maxConcurrency < 0 {
		return fmt.Errorf("%w: max concurrency must not be negative", ErrInvalidOption)
	}
	if _, ok := o.poller.(*inline); ok {
		return fmt.Errorf("%w: poller executor must run tasks asynchronously", ErrInvalidOption)
	}
	return nil
}

// WithLogger 设置日志记录器.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithClock 设置时钟.
//
// 测试中可注入 clockwork.FakeClock 控制时间.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithPollInterval 设置轮询间隔.
//
// 默认: 1 分钟.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithGracePeriod 设置 Stop 等待任务完成的时间.
//
// 默认: 5 秒.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) {
		o.gracePeriod = d
	}
}

// WithLocation 设置 ScheduleCron 解析表达式使用的时区.
//
// 默认: time.Local
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithMaxConcurrency 限制同时执行的任务数.
//
// 达到上限时本次触发被跳过，下次轮询重试. 0 表示不限制.
// 设置了 WithWorkerExecutor 时无效.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}

// WithPollerExecutor 设置运行轮询循环的执行器.
//
// 轮询循环一直运行到关闭，执行器必须异步运行任务，Inline 会被拒绝.
func WithPollerExecutor(e Executor) Option {
	return func(o *options) {
		o.poller = e
	}
}

// WithWorkerExecutor 设置运行任务的执行器.
func WithWorkerExecutor(e Executor) Option {
	return func(o *options) {
		o.worker = e
	}
}

// WithHooks 设置全局钩子.
//
// 对所有任务生效.
func WithHooks(hooks *Hooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithMetrics 设置指标记录器.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracerProvider 设置链路追踪提供者.
//
// 默认使用 otel 全局提供者.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithDefaultTimeout 设置默认任务超时时间.
//
// 如果任务未指定超时时间，将使用此值. 0 表示不限制.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *options) {
		o.defaultTimeout = d
	}
}

func (o *options) tracer() trace.Tracer {
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}
