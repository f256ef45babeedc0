package trigger

import "errors"

// 预定义错误.
var (
	// ErrEmptyExpression 表达式为空.
	ErrEmptyExpression = errors.New("trigger: cron expression is required")

	// ErrSecondsUnsupported 不支持秒级字段.
	ErrSecondsUnsupported = errors.New("trigger: seconds field is not supported")

	// ErrUnsupportedSchedule 不支持的调度形式（如 @every）.
	ErrUnsupportedSchedule = errors.New("trigger: unsupported schedule")

	// ErrInvalidExpression 无效的表达式.
	ErrInvalidExpression = errors.New("trigger: invalid cron expression")
)
