package main

import (
	"context"

	"github.com/Tsukikage7/cronpoll/scheduler"
)

// schedulerComponent 把调度器接入 app 生命周期.
type schedulerComponent struct {
	s scheduler.Scheduler
}

func newSchedulerComponent(s scheduler.Scheduler) *schedulerComponent {
	return &schedulerComponent{s: s}
}

func (c *schedulerComponent) Start(ctx context.Context) error {
	if err := c.s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (c *schedulerComponent) Stop(ctx context.Context) error {
	return c.s.Shutdown(ctx)
}

func (c *schedulerComponent) Name() string {
	return "scheduler"
}
