// Package recovery 提供 panic 捕获功能.
//
// 任务函数中的 panic 会被转换为 *PanicError 返回，调用方可以像处理普通错误一样处理:
//
//	err, perr := recovery.Call(func() error { return action(ctx) })
//	if perr != nil {
//	    var pe *recovery.PanicError
//	    if errors.As(perr, &pe) {
//	        log.Errorf("panic: %v\n%s", pe.Value, pe.Stack)
//	    }
//	}
package recovery

import (
	"fmt"
	"runtime"
)

// DefaultStackSize 默认堆栈缓冲区大小.
const DefaultStackSize = 64 * 1024

// PanicError 表示 panic 错误.
type PanicError struct {
	// Value 是 panic 的值.
	Value any
	// Stack 是堆栈信息.
	Stack []byte
}

// Error 实现 error 接口.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap 返回原始错误（如果 panic 值是 error）.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Option 配置函数.
type Option func(*options)

type options struct {
	stackSize int
	stackAll  bool
}

// WithStackSize 设置堆栈大小.
func WithStackSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.stackSize = size
		}
	}
}

// WithStackAll 设置是否捕获所有 goroutine 的堆栈.
func WithStackAll(all bool) Option {
	return func(o *options) {
		o.stackAll = all
	}
}

// Do 执行 fn，fn 中的 panic 以 *PanicError 返回.
func Do(fn func(), opts ...Option) (err error) {
	_, err = Call(func() struct{} {
		fn()
		return struct{}{}
	}, opts...)
	return err
}

// Call 执行 fn 并返回其结果，fn 中的 panic 以 *PanicError 返回.
func Call[T any](fn func() T, opts ...Option) (result T, err error) {
	o := &options{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(o)
	}

	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: captureStack(o.stackSize, o.stackAll)}
		}
	}()

	return fn(), nil
}

// captureStack 捕获堆栈信息.
func captureStack(size int, all bool) []byte {
	stack := make([]byte, size)
	n := runtime.Stack(stack, all)
	return stack[:n]
}
