// Package logger 提供结构化日志记录功能.
package logger

import (
	"context"

	"go.uber.org/zap"
)

// 日志级别常量.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// 输出格式常量.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// 输出目标常量.
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// 时间格式常量.
const (
	TimeFormatISO8601     = "iso8601"
	TimeFormatRFC3339     = "rfc3339"
	TimeFormatEpochMillis = "epochmillis"
	TimeFormatDateTime    = "datetime"
)

// contextKey context 键类型.
type contextKey string

// ExecutionIDKey 用于在 context 中存储任务执行 ID.
const ExecutionIDKey contextKey = "logger:executionId"

// Field 表示一个日志字段.
type Field struct {
	Key   string
	Value any
}

// Logger 日志记录器接口.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)

	// With 返回附带字段的 logger.
	With(fields ...Field) Logger
	// WithContext 返回附带 context 中执行信息的 logger.
	WithContext(ctx context.Context) Logger

	Sync() error
	Close() error
}

// ContextWithExecutionID 将执行 ID 注入到 context.
func ContextWithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ExecutionIDKey, id)
}

// ExecutionIDFromContext 从 context 中读取执行 ID.
func ExecutionIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(ExecutionIDKey).(string)
	return id, ok && id != ""
}

// NewLogger 创建 logger 实例.
func NewLogger(config *Config) (Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.ApplyDefaults()
	return newZapLogger(config)
}

// MustNewLogger 创建 logger 实例，失败时 panic.
func MustNewLogger(config *Config) Logger {
	l, err := NewLogger(config)
	if err != nil {
		panic(err)
	}
	return l
}

// NewZap 包装已有的 zap.Logger.
//
// 测试中可配合 zaptest/observer 断言日志输出.
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{logger: l, sugar: l.Sugar()}
}

// NewNop 返回丢弃所有输出的 logger.
func NewNop() Logger {
	return NewZap(zap.NewNop())
}
