package logger

import (
	"errors"
	"fmt"
)

// 预定义错误常量.
var (
	// ErrCreateDir 创建日志目录失败.
	ErrCreateDir = errors.New("创建日志目录失败")

	// ErrOpenFile 打开日志文件失败.
	ErrOpenFile = errors.New("打开日志文件失败")
)

// ConfigError 配置错误.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logger config error [%s]: %s", e.Field, e.Message)
}
