// Package config 加载 cronpoll 配置.
//
// 加载器基于 viper，文件格式由扩展名决定，环境变量可以覆盖文件中的值:
//
//	cfg, err := config.LoadFile("cronpoll.yaml")
//	// CRONPOLL_SCHEDULER_MAX_CONCURRENCY=4 覆盖 scheduler.max_concurrency
//
// 泛型的 Load / LoadFromBytes / LoadWithSearch 可以加载任意结构体，
// 目标类型实现 Defaulter 或 Validatable 时分别在解码后调用.
package config

import (
	"path/filepath"
	"strings"
)

// Validatable 解码后需要验证的配置.
type Validatable interface {
	Validate() error
}

// Defaulter 解码后、验证前需要填充默认值的配置.
type Defaulter interface {
	ApplyDefaults()
}

// 支持的文件格式.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

var extFormats = map[string]string{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".json": FormatJSON,
	".toml": FormatTOML,
}

// FormatOf 根据扩展名返回文件格式，不支持时返回空字符串.
func FormatOf(path string) string {
	return extFormats[strings.ToLower(filepath.Ext(path))]
}
