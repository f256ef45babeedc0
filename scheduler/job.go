package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Tsukikage7/cronpoll/logger"
	"github.com/Tsukikage7/cronpoll/recovery"
)

// Status 任务执行状态，只反映最近一次执行的结果.
type Status int32

const (
	// StatusWaiting 尚未执行.
	StatusWaiting Status = iota
	// StatusRunning 执行中.
	StatusRunning
	// StatusSuccess 执行成功.
	StatusSuccess
	// StatusFailure 执行失败（包括错误、panic、取消和超时）.
	StatusFailure
)

// String 返回状态字符串.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Action 任务执行函数.
//
// 返回 nil 表示成功，返回错误表示失败.
// 长时间运行的任务应自行检查 ctx，调度器不会强制中断任务.
type Action func(ctx context.Context) error

// StatusFunc 将返回 Status 的函数适配为 Action.
//
// 除 StatusSuccess 以外的返回值都视为失败.
func StatusFunc(fn func(ctx context.Context) Status) Action {
	return func(ctx context.Context) error {
		if st := fn(ctx); st != StatusSuccess {
			return fmt.Errorf("%w: %s", ErrJobFailed, st)
		}
		return nil
	}
}

// Observer 任务状态观察者，每次执行结束后以最终状态调用.
type Observer func(status Status)

// JobOption 任务配置选项.
type JobOption func(*Job)

// WithTimeout 设置单次尝试的超时时间.
func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		j.timeout = d
	}
}

// WithRetry 设置失败重试次数和间隔.
func WithRetry(count int, interval time.Duration) JobOption {
	return func(j *Job) {
		j.retryCount = count
		j.retryInterval = interval
	}
}

// WithObserver 注册状态观察者.
func WithObserver(obs Observer) JobOption {
	return func(j *Job) {
		if obs != nil {
			j.observers = append(j.observers, obs)
		}
	}
}

// Job 调度任务.
type Job struct {
	name          string
	action        Action
	timeout       time.Duration
	retryCount    int
	retryInterval time.Duration

	clock clockwork.Clock
	log   logger.Logger

	status    atomic.Int32
	stats     *JobStats
	mu        sync.Mutex
	observers []Observer
}

// NewJob 创建任务.
func NewJob(name string, action Action, opts ...JobOption) (*Job, error) {
	if name == "" {
		return nil, ErrJobNameEmpty
	}
	if action == nil {
		return nil, ErrActionNil
	}

	j := &Job{
		name:   name,
		action: action,
		clock:  clockwork.NewRealClock(),
		stats:  &JobStats{},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Name 返回任务名称（唯一标识）.
func (j *Job) Name() string {
	return j.name
}

// Status 返回最近一次执行的状态.
func (j *Job) Status() Status {
	return Status(j.status.Load())
}

// Stats 返回统计信息副本.
func (j *Job) Stats() JobStats {
	return j.stats.Clone()
}

// AddObserver 追加状态观察者.
func (j *Job) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	j.mu.Lock()
	j.observers = append(j.observers, obs)
	j.mu.Unlock()
}

// Execute 执行一次任务并返回最终状态.
//
// 任务函数的错误、panic 和取消都会转换为 StatusFailure，不会向外传播.
func (j *Job) Execute(ctx context.Context) Status {
	return j.run(ctx, &JobContext{Job: j, StartTime: j.clock.Now()})
}

// run 执行任务，并将执行细节写入 jc.
func (j *Job) run(ctx context.Context, jc *JobContext) Status {
	// 检查点：已取消的任务不进入 RUNNING
	if err := ctx.Err(); err != nil {
		jc.Error = err
		jc.Status = StatusFailure
		j.finish(StatusFailure)
		return StatusFailure
	}

	j.status.Store(int32(StatusRunning))
	start := j.clock.Now()
	j.stats.recordStart(start)

	var (
		err         error
		maxAttempts = j.retryCount + 1
	)
	for attempt := 1; ; attempt++ {
		jc.Attempt = attempt
		if err = j.attempt(ctx); err == nil || attempt >= maxAttempts {
			break
		}
		if j.log != nil {
			j.log.WithContext(ctx).Warnf("[Scheduler] 任务执行失败，准备重试: %s [attempt:%d/%d] [error:%v]",
				j.name, attempt, maxAttempts, err)
		}
		if !j.wait(ctx, j.retryInterval) {
			break
		}
	}

	duration := j.clock.Since(start)
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
		j.stats.recordFail(j.clock.Now(), duration, err)
	} else {
		j.stats.recordSuccess(j.clock.Now(), duration)
	}

	jc.Status = status
	jc.Error = err
	jc.Duration = duration

	j.finish(status)
	return status
}

// attempt 执行一次任务函数.
func (j *Job) attempt(ctx context.Context) error {
	actx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	err, perr := recovery.Call(func() error { return j.action(actx) })
	if perr != nil {
		return perr
	}
	return err
}

// wait 等待重试间隔，ctx 取消时返回 false.
func (j *Job) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-j.clock.After(d):
		return true
	}
}

// finish 记录最终状态并按注册顺序通知观察者.
func (j *Job) finish(status Status) {
	j.status.Store(int32(status))

	j.mu.Lock()
	observers := make([]Observer, len(j.observers))
	copy(observers, j.observers)
	j.mu.Unlock()

	for _, obs := range observers {
		if err := recovery.Do(func() { obs(status) }); err != nil && j.log != nil {
			fields := []logger.Field{logger.String("job", j.name), logger.Err(err)}
			var pe *recovery.PanicError
			if errors.As(err, &pe) {
				fields = append(fields, logger.String("stack", string(pe.Stack)))
			}
			j.log.With(fields...).Error("[Scheduler] 状态观察者 panic")
		}
	}
}

// JobStats 任务执行统计.
type JobStats struct {
	mu            sync.RWMutex
	RunCount      int64         // 执行次数
	SuccessCount  int64         // 成功次数
	FailCount     int64         // 失败次数
	SkipCount     int64         // 跳过次数（上一次执行未结束等）
	LastRunAt     time.Time     // 上次执行时间
	LastSuccessAt time.Time     // 上次成功时间
	LastFailAt    time.Time     // 上次失败时间
	LastError     error         // 上次错误
	LastDuration  time.Duration // 上次执行耗时
	TotalDuration time.Duration // 总执行耗时
}

// Clone 返回统计信息副本.
func (s *JobStats) Clone() JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return JobStats{
		RunCount:      s.RunCount,
		SuccessCount:  s.SuccessCount,
		FailCount:     s.FailCount,
		SkipCount:     s.SkipCount,
		LastRunAt:     s.LastRunAt,
		LastSuccessAt: s.LastSuccessAt,
		LastFailAt:    s.LastFailAt,
		LastError:     s.LastError,
		LastDuration:  s.LastDuration,
		TotalDuration: s.TotalDuration,
	}
}

func (s *JobStats) recordStart(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RunCount++
	s.LastRunAt = at
}

func (s *JobStats) recordSuccess(at time.Time, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SuccessCount++
	s.LastSuccessAt = at
	s.LastDuration = duration
	s.TotalDuration += duration
	s.LastError = nil
}

func (s *JobStats) recordFail(at time.Time, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailCount++
	s.LastFailAt = at
	s.LastDuration = duration
	s.TotalDuration += duration
	s.LastError = err
}

func (s *JobStats) recordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SkipCount++
}
