package trigger

import "time"

// Once 只在指定分钟触发一次的触发器.
//
// 该分钟过去之后 Next 返回 false，调度器会将其移除.
type Once struct {
	at time.Time
}

var _ Trigger = (*Once)(nil)

// At 创建在 t 所在分钟触发一次的触发器.
func At(t time.Time) *Once {
	return &Once{at: truncate(t)}
}

// Matches 判断 t 是否落在目标分钟内.
func (o *Once) Matches(t time.Time) bool {
	return truncate(t).Equal(o.at)
}

// Next 目标分钟未过去时返回目标分钟.
func (o *Once) Next(t time.Time) (time.Time, bool) {
	if o.at.Before(truncate(t)) {
		return time.Time{}, false
	}
	return o.at, true
}

// String 返回目标时间.
func (o *Once) String() string {
	return "@at " + o.at.Format(time.RFC3339)
}
