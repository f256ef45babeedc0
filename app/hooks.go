package app

import "context"

// Stage 生命周期阶段.
type Stage int

const (
	StageBeforeStart Stage = iota
	StageAfterStart
	StageBeforeStop
	StageAfterStop
)

// Hook 生命周期钩子函数.
type Hook func(ctx context.Context) error

// Hooks 按阶段保存的生命周期钩子.
type Hooks struct {
	stages map[Stage][]Hook
}

// NewHooks 创建空的钩子集合.
func NewHooks() *Hooks {
	return &Hooks{stages: make(map[Stage][]Hook)}
}

// On 在指定阶段追加钩子.
func (h *Hooks) On(stage Stage, hook Hook) *Hooks {
	h.stages[stage] = append(h.stages[stage], hook)
	return h
}

// run 依次执行某阶段的钩子，遇到错误立即返回.
func (h *Hooks) run(ctx context.Context, stage Stage) error {
	if h == nil {
		return nil
	}
	for _, hook := range h.stages[stage] {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	return nil
}
