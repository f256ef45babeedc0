package scheduler

import "time"

// 跳过原因.
const (
	SkipReasonRunning  = "running"
	SkipReasonRejected = "rejected"
	SkipReasonVetoed   = "vetoed"
)

// MetricsRecorder 调度指标记录器.
//
// metrics 包提供 Prometheus 实现.
type MetricsRecorder interface {
	// JobDispatched 任务已提交到执行器.
	JobDispatched(job string)

	// JobSkipped 本次触发被跳过.
	JobSkipped(job, reason string)

	// JobPruned 任务因不再可能触发被移除.
	JobPruned(job string)

	// JobCompleted 任务执行结束.
	JobCompleted(job, status string, duration time.Duration)

	// SetExecuting 设置正在执行的任务数.
	SetExecuting(n int)

	// SetRegistered 设置已注册的任务数.
	SetRegistered(n int)
}

type nopMetrics struct{}

func (nopMetrics) JobDispatched(string)                       {}
func (nopMetrics) JobSkipped(string, string)                  {}
func (nopMetrics) JobPruned(string)                           {}
func (nopMetrics) JobCompleted(string, string, time.Duration) {}
func (nopMetrics) SetExecuting(int)                           {}
func (nopMetrics) SetRegistered(int)                          {}
