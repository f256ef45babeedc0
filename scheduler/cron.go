package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tsukikage7/cronpoll/logger"
	"github.com/Tsukikage7/cronpoll/recovery"
	"github.com/Tsukikage7/cronpoll/trigger"
)

const tracerName = "github.com/Tsukikage7/cronpoll/scheduler"

// cronScheduler 基于轮询的 Cron 调度器实现.
type cronScheduler struct {
	opts      *options
	clock     clockwork.Clock
	tracer    trace.Tracer
	registry  *registry
	executing *executingSet
	poller    Executor
	worker    Executor

	pollCtx      context.Context
	pollCancel   context.CancelFunc
	workerCtx    context.Context
	workerCancel context.CancelFunc

	mu       sync.RWMutex
	state    State
	pollDone chan struct{}

	// lastMinute 仅由轮询 goroutine 访问
	lastMinute time.Time
}

// newCronScheduler 创建 Cron 调度器.
func newCronScheduler(opts ...Option) (*cronScheduler, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	s := &cronScheduler{
		opts:      o,
		clock:     o.clock,
		tracer:    o.tracer(),
		registry:  newRegistry(),
		executing: newExecutingSet(),
		poller:    o.poller,
		worker:    o.worker,
	}
	if s.poller == nil {
		s.poller = NewPool(1)
	}
	if s.worker == nil {
		s.worker = NewPool(o.maxConcurrency)
	}
	s.pollCtx, s.pollCancel = context.WithCancel(context.Background())
	s.workerCtx, s.workerCancel = context.WithCancel(context.Background())
	return s, nil
}

// Schedule 注册任务.
func (s *cronScheduler) Schedule(name string, trig trigger.Trigger, action Action, opts ...JobOption) (*Job, error) {
	if trig == nil {
		return nil, ErrTriggerNil
	}

	jobOpts := make([]JobOption, 0, len(opts)+1)
	jobOpts = append(jobOpts, WithTimeout(s.opts.defaultTimeout))
	jobOpts = append(jobOpts, opts...)
	job, err := NewJob(name, action, jobOpts...)
	if err != nil {
		return nil, err
	}
	job.clock = s.clock
	job.log = s.opts.logger

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == StateStopped {
		return nil, ErrSchedulerClosed
	}
	if err := s.registry.add(NewExecutableUnit(trig, job)); err != nil {
		return nil, err
	}

	s.opts.metrics.SetRegistered(s.registry.len())
	s.logDebugf("任务已添加: %s [trigger:%v]", name, trig)
	return job, nil
}

// ScheduleCron 使用 cron 表达式注册任务.
func (s *cronScheduler) ScheduleCron(name, expr string, action Action, opts ...JobOption) (*Job, error) {
	var topts []trigger.Option
	if s.opts.location != nil {
		topts = append(topts, trigger.WithLocation(s.opts.location))
	}
	trig, err := trigger.Parse(expr, topts...)
	if err != nil {
		return nil, err
	}
	return s.Schedule(name, trig, action, opts...)
}

// Remove 移除任务.
func (s *cronScheduler) Remove(name string) error {
	if _, ok := s.registry.remove(name); !ok {
		return ErrJobNotFound
	}
	s.opts.metrics.SetRegistered(s.registry.len())
	s.logDebugf("任务已移除: %s", name)
	return nil
}

// Get 获取任务.
func (s *cronScheduler) Get(name string) (*Job, bool) {
	u, ok := s.registry.get(name)
	if !ok {
		return nil, false
	}
	return u.job, true
}

// List 列出所有任务.
func (s *cronScheduler) List() []*Job {
	units := s.registry.snapshot()
	jobs := make([]*Job, 0, len(units))
	for _, u := range units {
		jobs = append(jobs, u.job)
	}
	return jobs
}

// Upcoming 按下一次执行时间排序返回任务快照.
func (s *cronScheduler) Upcoming() []Entry {
	now := s.clock.Now()
	units := s.registry.snapshot()
	slices.SortStableFunc(units, func(a, b *ExecutableUnit) int {
		return a.Compare(b, now)
	})

	entries := make([]Entry, 0, len(units))
	for _, u := range units {
		next, ok := u.Next(now)
		entries = append(entries, Entry{
			Name:    u.job.Name(),
			Trigger: u.trigger,
			Next:    next,
			HasNext: ok,
			Status:  u.job.Status(),
			Running: s.executing.Contains(u.job.Name()),
		})
	}
	return entries
}

// Start 启动调度器.
//
// 轮询循环提交到 poller 执行器后返回，提交时不持有调度器锁.
func (s *cronScheduler) Start() error {
	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return ErrSchedulerClosed
	case StateStarted:
		s.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	s.pollDone = done
	s.state = StateStarted
	s.mu.Unlock()

	s.logInfof("调度器已启动 [interval:%v] [jobs:%d]", s.opts.pollInterval, s.registry.len())

	if err := s.poller.Submit(func() {
		defer close(done)
		s.poll(s.pollCtx)
	}); err != nil {
		close(done)
		s.mu.Lock()
		if s.state == StateStarted {
			s.state = StateCreated
			s.pollDone = nil
		}
		s.mu.Unlock()
		return fmt.Errorf("scheduler: start poller: %w", err)
	}
	return nil
}

// Stop 使用默认宽限期关闭调度器.
func (s *cronScheduler) Stop() error {
	return s.Shutdown(context.Background())
}

// Shutdown 优雅关闭.
//
// ctx 没有截止时间时使用 WithGracePeriod 设置的宽限期.
// 宽限期内未能结束的组件以 ErrShutdownTimeout 返回.
func (s *cronScheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopped
	pollDone := s.pollDone
	s.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok && s.opts.gracePeriod > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.gracePeriod)
		defer cancel()
	}

	// 停止轮询并通知正在执行的任务
	s.pollCancel()
	s.workerCancel()

	var errs []error
	if err := s.stopPoller(ctx, pollDone); err != nil {
		errs = append(errs, fmt.Errorf("%w: poller: %w", ErrShutdownTimeout, err))
	}
	if err := s.worker.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%w: workers: %w", ErrShutdownTimeout, err))
	}

	if err := errors.Join(errs...); err != nil {
		s.logWarnf("调度器关闭超时 [executing:%d] [error:%v]", s.executing.Len(), err)
		return err
	}

	s.logInfo("调度器优雅关闭完成")
	return nil
}

// stopPoller 等待轮询循环退出并关闭轮询执行器.
func (s *cronScheduler) stopPoller(ctx context.Context, done <-chan struct{}) error {
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			_ = s.poller.Shutdown(ctx)
			return ctx.Err()
		}
	}
	return s.poller.Shutdown(ctx)
}

// State 返回调度器状态.
func (s *cronScheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Running 检查是否运行中.
func (s *cronScheduler) Running() bool {
	return s.State() == StateStarted
}

// Trigger 立即触发任务执行.
func (s *cronScheduler) Trigger(name string) error {
	if s.State() == StateStopped {
		return ErrSchedulerClosed
	}

	u, ok := s.registry.get(name)
	if !ok {
		return ErrJobNotFound
	}
	if !s.executing.TryAdd(name) {
		return ErrJobRunning
	}

	jc := s.newJobContext(u.job, s.clock.Now())
	if err := s.submit(jc); err != nil {
		s.release(u.job)
		return err
	}
	s.logDebugf("任务已手动触发: %s [executionId:%s]", name, jc.ExecutionID)
	return nil
}

// poll 轮询循环.
//
// 启动时立即轮询一次，之后的轮询点对齐到 interval 的整数倍再加上 tickOffset，
// 使每次轮询都落在所属分钟内部. 错过的轮询点直接跳过，不做补偿.
func (s *cronScheduler) poll(ctx context.Context) {
	interval := s.opts.pollInterval
	next := s.clock.Now().Truncate(interval).Add(tickOffset(interval))

	for {
		if ctx.Err() != nil {
			return
		}

		now := s.clock.Now()
		if err := recovery.Do(func() { s.tick(ctx, now) }); err != nil {
			s.logPanic("轮询 panic", err)
		}

		next = next.Add(interval)
		now = s.clock.Now()
		if !next.After(now) {
			missed := now.Sub(next)/interval + 1
			next = next.Add(missed * interval)
			s.logWarnf("轮询耗时过长，跳过 %d 个轮询点", missed)
		}

		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logDebug("轮询已停止")
			return
		case <-timer.Chan():
		}
	}
}

// tickOffset 轮询点相对 interval 边界的偏移，最多 1 秒.
func tickOffset(interval time.Duration) time.Duration {
	return min(time.Second, interval/10)
}

// tick 执行一次轮询.
//
// 同一分钟内的重复轮询只做移除检查，不再派发.
func (s *cronScheduler) tick(ctx context.Context, now time.Time) {
	minute := now.Truncate(time.Minute)
	dispatch := !minute.Equal(s.lastMinute)
	s.lastMinute = minute

	for _, u := range s.registry.snapshot() {
		if ctx.Err() != nil {
			return
		}

		if _, ok := u.Next(now); !ok {
			s.prune(ctx, u, now)
			continue
		}
		if !dispatch || !u.trigger.Matches(now) {
			continue
		}
		s.dispatch(ctx, u, now)
	}

	s.opts.metrics.SetExecuting(s.executing.Len())
}

// prune 移除不可能再触发的任务.
func (s *cronScheduler) prune(ctx context.Context, u *ExecutableUnit, now time.Time) {
	if !s.registry.removeUnit(u) {
		return
	}

	name := u.job.Name()
	s.opts.metrics.JobPruned(name)
	s.opts.metrics.SetRegistered(s.registry.len())
	s.opts.hooks.runPruneHooks(ctx, &JobContext{Job: u.job, ScheduledAt: now})
	s.logInfof("任务已无后续执行时间，已移除: %s [trigger:%v]", name, u.trigger)
}

// dispatch 派发一次匹配.
func (s *cronScheduler) dispatch(ctx context.Context, u *ExecutableUnit, now time.Time) {
	job := u.job
	jc := s.newJobContext(job, now)

	if !s.executing.TryAdd(job.Name()) {
		s.skip(ctx, jc, SkipReasonRunning, "previous execution still running")
		s.logDebugf("任务跳过（上一次执行未结束）: %s", job.Name())
		return
	}

	if err := s.submit(jc); err != nil {
		s.release(job)
		s.skip(ctx, jc, SkipReasonRejected, err.Error())
		s.logWarnf("任务提交失败，下次轮询重试: %s [error:%v]", job.Name(), err)
		return
	}
}

// submit 将执行提交到 worker 执行器.
//
// 调用方需已将任务加入 executing，执行结束时无论结果如何都会释放.
func (s *cronScheduler) submit(jc *JobContext) error {
	job := jc.Job
	err := s.worker.Submit(func() {
		defer s.release(job)
		if err := recovery.Do(func() { s.executeJob(jc) }); err != nil {
			s.logPanic("任务执行 panic", err,
				logger.String("job", job.Name()),
				logger.String("executionId", jc.ExecutionID),
			)
		}
	})
	if err != nil {
		return err
	}
	s.opts.metrics.JobDispatched(job.Name())
	return nil
}

// release 将任务移出 executing.
func (s *cronScheduler) release(job *Job) {
	s.executing.Remove(job.Name())
	s.opts.metrics.SetExecuting(s.executing.Len())
}

// executeJob 执行任务.
func (s *cronScheduler) executeJob(jc *JobContext) {
	job := jc.Job
	ctx := logger.ContextWithExecutionID(s.workerCtx, jc.ExecutionID)
	ctx, span := s.tracer.Start(ctx, "cronpoll.job",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("cron.job.name", job.Name()),
			attribute.String("cron.execution.id", jc.ExecutionID),
			attribute.String("cron.scheduled_at", jc.ScheduledAt.Format(time.RFC3339)),
		),
	)
	defer span.End()

	jc.StartTime = s.clock.Now()

	// 1. 执行前置钩子
	if err := s.opts.hooks.runBeforeHooks(ctx, jc); err != nil {
		jc.Error = err
		span.SetAttributes(attribute.Bool("cron.job.skipped", true))
		s.skip(ctx, jc, SkipReasonVetoed, err.Error())
		s.logDebugf("前置钩子阻止任务执行 [job:%s] [error:%v]", job.Name(), err)
		return
	}

	// 2. 执行任务（带重试）
	s.logDebugf("开始执行任务: %s [executionId:%s]", job.Name(), jc.ExecutionID)
	status := job.run(ctx, jc)

	span.SetAttributes(
		attribute.String("cron.job.status", status.String()),
		attribute.Int("cron.job.attempts", jc.Attempt),
	)
	s.opts.metrics.JobCompleted(job.Name(), status.String(), jc.Duration)

	// 3. 结果处理
	if status == StatusFailure {
		if jc.Error != nil {
			span.RecordError(jc.Error)
			span.SetStatus(codes.Error, jc.Error.Error())
		} else {
			span.SetStatus(codes.Error, status.String())
		}
		s.opts.hooks.runErrorHooks(ctx, jc)
		if log := s.logger(); log != nil {
			log.WithContext(ctx).Errorf("[Scheduler] 任务执行失败: %s [attempts:%d] [duration:%v] [error:%v]",
				job.Name(), jc.Attempt, jc.Duration, jc.Error)
		}
	} else {
		span.SetStatus(codes.Ok, "")
		s.logDebugf("任务执行成功: %s [duration:%v]", job.Name(), jc.Duration)
	}

	s.opts.hooks.runAfterHooks(ctx, jc)
}

// skip 记录一次跳过.
func (s *cronScheduler) skip(ctx context.Context, jc *JobContext, reason, detail string) {
	jc.Skipped = true
	jc.SkipReason = detail
	jc.Job.stats.recordSkip()
	s.opts.metrics.JobSkipped(jc.Job.Name(), reason)
	s.opts.hooks.runSkipHooks(ctx, jc)
}

func (s *cronScheduler) newJobContext(job *Job, scheduledAt time.Time) *JobContext {
	return &JobContext{
		Job:         job,
		ExecutionID: uuid.NewString(),
		ScheduledAt: scheduledAt,
	}
}

// 日志辅助方法.

func (s *cronScheduler) logger() logger.Logger {
	return s.opts.logger
}

func (s *cronScheduler) logDebug(msg string) {
	if log := s.logger(); log != nil {
		log.Debug("[Scheduler] " + msg)
	}
}

func (s *cronScheduler) logDebugf(format string, args ...any) {
	if log := s.logger(); log != nil {
		log.Debugf("[Scheduler] "+format, args...)
	}
}

func (s *cronScheduler) logInfo(msg string) {
	if log := s.logger(); log != nil {
		log.Info("[Scheduler] " + msg)
	}
}

func (s *cronScheduler) logInfof(format string, args ...any) {
	if log := s.logger(); log != nil {
		log.Infof("[Scheduler] "+format, args...)
	}
}

func (s *cronScheduler) logWarnf(format string, args ...any) {
	if log := s.logger(); log != nil {
		log.Warnf("[Scheduler] "+format, args...)
	}
}

// logPanic 记录 panic，附带捕获到的堆栈.
func (s *cronScheduler) logPanic(msg string, err error, fields ...logger.Field) {
	log := s.logger()
	if log == nil {
		return
	}
	var pe *recovery.PanicError
	if errors.As(err, &pe) {
		fields = append(fields, logger.String("stack", string(pe.Stack)))
	}
	log.With(append(fields, logger.Err(err))...).Error("[Scheduler] " + msg)
}
