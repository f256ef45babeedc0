// Package scheduler 提供分钟级任务调度功能.
//
// 特性：
//   - 轮询模型：每个轮询间隔检查全部触发器，匹配当前分钟的任务被派发
//   - 去重：同一任务同时最多一个执行，慢任务自动限流而不是堆积
//   - 自动移除不可能再触发的任务
//   - 任务状态跟踪、观察者和统计
//   - Hook 机制：BeforeJob/AfterJob/OnError/OnSkip/OnPrune
//   - 失败重试和超时
//   - 可注入时钟和执行器，便于测试
//   - 优雅关闭
//
// 示例：
//
//	s := scheduler.MustNew(
//	    scheduler.WithLogger(log),
//	    scheduler.WithMaxConcurrency(16),
//	)
//
//	_, err := s.ScheduleCron("sync-data", "*/5 * * * *", syncData,
//	    scheduler.WithTimeout(time.Minute),
//	    scheduler.WithRetry(2, 10*time.Second),
//	)
//
//	s.Start()
//	defer s.Stop()
package scheduler

import (
	"context"

	"github.com/Tsukikage7/cronpoll/trigger"
)

// State 调度器状态.
type State int32

const (
	// StateCreated 已创建，尚未启动.
	StateCreated State = iota
	// StateStarted 运行中.
	StateStarted
	// StateStopped 已关闭，不可再启动.
	StateStopped
)

// String 返回状态字符串.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Scheduler 调度器接口.
type Scheduler interface {
	// Schedule 注册任务.
	Schedule(name string, trig trigger.Trigger, action Action, opts ...JobOption) (*Job, error)

	// ScheduleCron 使用 cron 表达式注册任务.
	ScheduleCron(name, expr string, action Action, opts ...JobOption) (*Job, error)

	// Remove 移除任务，正在进行的执行不受影响.
	Remove(name string) error

	// Get 获取任务.
	Get(name string) (*Job, bool)

	// List 按注册顺序列出所有任务.
	List() []*Job

	// Upcoming 按下一次执行时间排序返回任务快照.
	Upcoming() []Entry

	// Start 启动调度器.
	Start() error

	// Stop 使用默认宽限期关闭调度器.
	Stop() error

	// Shutdown 优雅关闭.
	Shutdown(ctx context.Context) error

	// State 返回调度器状态.
	State() State

	// Running 检查是否运行中.
	Running() bool

	// Trigger 立即触发任务执行（不影响正常调度）.
	Trigger(name string) error
}

// New 创建调度器.
func New(opts ...Option) (Scheduler, error) {
	return newCronScheduler(opts...)
}

// MustNew 创建调度器，失败时 panic.
func MustNew(opts ...Option) Scheduler {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}
