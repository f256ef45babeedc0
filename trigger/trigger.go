// Package trigger 提供分钟级的 Cron 触发器.
//
// 触发器只回答两个问题：某一时刻所在的分钟是否匹配，以及下一次匹配的分钟是什么.
// 表达式解析和时间计算由 github.com/robfig/cron/v3 完成.
//
// 示例:
//
//	t, err := trigger.Parse("30 2 * * *") // 每天 02:30
//	if err != nil {
//	    return err
//	}
//	t.Matches(now)      // now 所在分钟是否为 02:30
//	next, ok := t.Next(now)
//
// 不支持秒级表达式，也不支持 "@every" 形式的固定间隔.
package trigger

import "time"

// Trigger 触发器接口.
type Trigger interface {
	// Matches 判断 t 所在的分钟是否匹配.
	Matches(t time.Time) bool

	// Next 返回不早于 t 所在分钟的下一个匹配分钟.
	// 返回 false 表示永远不会再匹配.
	Next(t time.Time) (time.Time, bool)
}

// truncate 将时间截断到分钟.
func truncate(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
