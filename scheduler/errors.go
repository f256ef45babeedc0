package scheduler

import "errors"

// 预定义错误.
var (
	// ErrJobNameEmpty 任务名称为空.
	ErrJobNameEmpty = errors.New("scheduler: job name is required")

	// ErrTriggerNil 触发器为空.
	ErrTriggerNil = errors.New("scheduler: trigger is required")

	// ErrActionNil 任务函数为空.
	ErrActionNil = errors.New("scheduler: job action is required")

	// ErrSchedulerClosed 调度器已关闭.
	ErrSchedulerClosed = errors.New("scheduler: scheduler is closed")

	// ErrJobNotFound 任务未找到.
	ErrJobNotFound = errors.New("scheduler: job not found")

	// ErrJobExists 任务已存在.
	ErrJobExists = errors.New("scheduler: job already exists")

	// ErrJobRunning 任务正在执行中.
	ErrJobRunning = errors.New("scheduler: job is already running")

	// ErrJobFailed 任务返回失败状态.
	ErrJobFailed = errors.New("scheduler: job reported failure")

	// ErrInvalidOption 无效的调度器配置.
	ErrInvalidOption = errors.New("scheduler: invalid option")

	// ErrExecutorClosed 执行器已关闭.
	ErrExecutorClosed = errors.New("scheduler: executor is closed")

	// ErrPoolExhausted 工作池已满.
	ErrPoolExhausted = errors.New("scheduler: worker pool exhausted")

	// ErrShutdownTimeout 关闭超时.
	ErrShutdownTimeout = errors.New("scheduler: shutdown timed out")
)
