package scheduler

import (
	"time"

	"github.com/Tsukikage7/cronpoll/trigger"
)

// ExecutableUnit 触发器与任务的绑定，注册期间不可变.
type ExecutableUnit struct {
	trigger trigger.Trigger
	job     *Job
}

// NewExecutableUnit 创建执行单元.
func NewExecutableUnit(t trigger.Trigger, j *Job) *ExecutableUnit {
	return &ExecutableUnit{trigger: t, job: j}
}

// Trigger 返回触发器.
func (u *ExecutableUnit) Trigger() trigger.Trigger {
	return u.trigger
}

// Job 返回任务.
func (u *ExecutableUnit) Job() *Job {
	return u.job
}

// Next 返回下一次执行时间.
func (u *ExecutableUnit) Next(now time.Time) (time.Time, bool) {
	return u.trigger.Next(now)
}

// Compare 按下一次执行时间比较两个单元.
//
// 时间早的排在前面，永远不会再执行的单元排在最后.
func (u *ExecutableUnit) Compare(other *ExecutableUnit, now time.Time) int {
	a, aok := u.Next(now)
	b, bok := other.Next(now)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	default:
		return a.Compare(b)
	}
}

// Entry 执行单元快照.
type Entry struct {
	Name    string
	Trigger trigger.Trigger
	Next    time.Time
	HasNext bool
	Status  Status
	Running bool
}
