package scheduler

import (
	"context"
	"time"
)

// JobContext 任务执行上下文.
type JobContext struct {
	// Job 当前任务.
	Job *Job

	// ExecutionID 本次执行的唯一 ID.
	ExecutionID string

	// ScheduledAt 触发本次执行的轮询时间.
	ScheduledAt time.Time

	// StartTime 开始执行时间.
	StartTime time.Time

	// Attempt 当前尝试次数（从 1 开始）.
	Attempt int

	// Status 执行结果（仅在 AfterJob/OnError 中有值）.
	Status Status

	// Error 执行错误（仅在 AfterJob/OnError 中有值）.
	Error error

	// Duration 执行耗时（仅在 AfterJob/OnError 中有值）.
	Duration time.Duration

	// Skipped 是否被跳过.
	Skipped bool

	// SkipReason 跳过原因.
	SkipReason string
}

// BeforeJobHook 任务执行前回调.
// 返回 error 将阻止本次执行.
type BeforeJobHook func(ctx context.Context, jc *JobContext) error

// AfterJobHook 任务执行后回调.
type AfterJobHook func(ctx context.Context, jc *JobContext)

// OnErrorHook 任务失败回调.
type OnErrorHook func(ctx context.Context, jc *JobContext)

// OnSkipHook 任务跳过回调.
type OnSkipHook func(ctx context.Context, jc *JobContext)

// OnPruneHook 任务因触发器不再可能触发而被移除时回调.
type OnPruneHook func(ctx context.Context, jc *JobContext)

// Hooks 任务钩子集合.
type Hooks struct {
	BeforeJob []BeforeJobHook
	AfterJob  []AfterJobHook
	OnError   []OnErrorHook
	OnSkip    []OnSkipHook
	OnPrune   []OnPruneHook
}

func (h *Hooks) runBeforeHooks(ctx context.Context, jc *JobContext) error {
	if h == nil {
		return nil
	}
	for _, hook := range h.BeforeJob {
		if err := hook(ctx, jc); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) runAfterHooks(ctx context.Context, jc *JobContext) {
	if h == nil {
		return
	}
	for _, hook := range h.AfterJob {
		hook(ctx, jc)
	}
}

func (h *Hooks) runErrorHooks(ctx context.Context, jc *JobContext) {
	if h == nil {
		return
	}
	for _, hook := range h.OnError {
		hook(ctx, jc)
	}
}

func (h *Hooks) runSkipHooks(ctx context.Context, jc *JobContext) {
	if h == nil {
		return
	}
	for _, hook := range h.OnSkip {
		hook(ctx, jc)
	}
}

func (h *Hooks) runPruneHooks(ctx context.Context, jc *JobContext) {
	if h == nil {
		return
	}
	for _, hook := range h.OnPrune {
		hook(ctx, jc)
	}
}

// HooksBuilder 钩子构建器.
type HooksBuilder struct {
	hooks *Hooks
}

// NewHooks 创建钩子构建器.
func NewHooks() *HooksBuilder {
	return &HooksBuilder{
		hooks: &Hooks{},
	}
}

// BeforeJob 添加前置钩子.
func (b *HooksBuilder) BeforeJob(hook BeforeJobHook) *HooksBuilder {
	b.hooks.BeforeJob = append(b.hooks.BeforeJob, hook)
	return b
}

// AfterJob 添加后置钩子.
func (b *HooksBuilder) AfterJob(hook AfterJobHook) *HooksBuilder {
	b.hooks.AfterJob = append(b.hooks.AfterJob, hook)
	return b
}

// OnError 添加失败钩子.
func (b *HooksBuilder) OnError(hook OnErrorHook) *HooksBuilder {
	b.hooks.OnError = append(b.hooks.OnError, hook)
	return b
}

// OnSkip 添加跳过钩子.
func (b *HooksBuilder) OnSkip(hook OnSkipHook) *HooksBuilder {
	b.hooks.OnSkip = append(b.hooks.OnSkip, hook)
	return b
}

// OnPrune 添加移除钩子.
func (b *HooksBuilder) OnPrune(hook OnPruneHook) *HooksBuilder {
	b.hooks.OnPrune = append(b.hooks.OnPrune, hook)
	return b
}

// Build 构建钩子.
func (b *HooksBuilder) Build() *Hooks {
	return b.hooks
}
