package trigger

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// parser 仅支持 5 字段标准格式和 @daily 等描述符.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Option 触发器配置选项.
type Option func(*options)

type options struct {
	location *time.Location
}

// WithLocation 设置时区.
//
// 表达式中显式指定 CRON_TZ 时以表达式为准.
// 默认使用被判断时间自身的时区.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// Cron 基于 Cron 表达式的触发器.
type Cron struct {
	expr     string
	schedule *cron.SpecSchedule
}

var _ Trigger = (*Cron)(nil)

// Parse 解析 Cron 表达式.
func Parse(expr string, opts ...Option) (*Cron, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if fieldCount(expr) == 6 {
		return nil, fmt.Errorf("%w: %q", ErrSecondsUnsupported, expr)
	}

	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
	}

	spec, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSchedule, expr)
	}

	if o.location != nil && spec.Location == time.Local {
		spec.Location = o.location
	}

	return &Cron{expr: expr, schedule: spec}, nil
}

// MustParse 解析 Cron 表达式，失败时 panic.
func MustParse(expr string, opts ...Option) *Cron {
	c, err := Parse(expr, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// fieldCount 统计时间字段数量，忽略 CRON_TZ/TZ 前缀.
func fieldCount(expr string) int {
	fields := strings.Fields(expr)
	if len(fields) > 0 && (strings.HasPrefix(fields[0], "CRON_TZ=") || strings.HasPrefix(fields[0], "TZ=")) {
		fields = fields[1:]
	}
	return len(fields)
}

// Matches 判断 t 所在的分钟是否匹配.
func (c *Cron) Matches(t time.Time) bool {
	minute := truncate(t)
	return c.schedule.Next(minute.Add(-time.Second)).Equal(minute)
}

// Next 返回不早于 t 所在分钟的下一个匹配分钟.
//
// robfig/cron 在五年内找不到匹配时返回零值，此时视为永远不会再触发（如 "0 0 30 2 *"）.
func (c *Cron) Next(t time.Time) (time.Time, bool) {
	next := c.schedule.Next(truncate(t).Add(-time.Second))
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Location 返回触发器时区.
func (c *Cron) Location() *time.Location {
	return c.schedule.Location
}

// String 返回原始表达式.
func (c *Cron) String() string {
	return c.expr
}
