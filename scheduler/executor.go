package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Executor 任务执行器.
//
// 调度器使用两个执行器：poller 运行轮询循环，worker 运行任务.
type Executor interface {
	// Submit 提交任务，无法接受时返回错误.
	Submit(task func()) error

	// Shutdown 停止接受新任务并等待已提交任务完成.
	Shutdown(ctx context.Context) error
}

// Pool 弹性 goroutine 池，每个任务一个 goroutine.
type Pool struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	active atomic.Int64
}

// NewPool 创建 goroutine 池.
//
// max <= 0 表示不限制并发数.
func NewPool(max int) *Pool {
	p := &Pool{}
	if max > 0 {
		p.sem = semaphore.NewWeighted(int64(max))
	}
	return p
}

// Submit 提交任务.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrExecutorClosed
	}
	if p.sem != nil && !p.sem.TryAcquire(1) {
		return ErrPoolExhausted
	}

	p.wg.Add(1)
	p.active.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.active.Add(-1)
		if p.sem != nil {
			defer p.sem.Release(1)
		}
		task()
	}()
	return nil
}

// Active 返回正在运行的任务数.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Shutdown 关闭池并等待任务完成.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %d task(s) still running", ctx.Err(), p.Active())
	}
}

// inline 在调用方 goroutine 中同步执行任务.
type inline struct {
	closed atomic.Bool
}

// Inline 返回同步执行器.
//
// 主要用于测试：任务在 Submit 返回前执行完毕.
func Inline() Executor {
	return &inline{}
}

func (e *inline) Submit(task func()) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	task()
	return nil
}

func (e *inline) Shutdown(context.Context) error {
	e.closed.Store(true)
	return nil
}
