package logger

import (
	"path/filepath"
	"strings"
)

// Config 日志配置.
type Config struct {
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Format      string `json:"format" yaml:"format" mapstructure:"format"`

	// Output 为 file 或 both 时写入 LogDir/FileName
	Output   string `json:"output" yaml:"output" mapstructure:"output"`
	LogDir   string `json:"log_dir" yaml:"log_dir" mapstructure:"log_dir"`
	FileName string `json:"file_name" yaml:"file_name" mapstructure:"file_name"`

	EnableCaller     bool `json:"enable_caller" yaml:"enable_caller" mapstructure:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace" yaml:"enable_stacktrace" mapstructure:"enable_stacktrace"`

	TimeFormat string `json:"time_format" yaml:"time_format" mapstructure:"time_format"`
	TimeKey    string `json:"time_key" yaml:"time_key" mapstructure:"time_key"`
	MessageKey string `json:"message_key" yaml:"message_key" mapstructure:"message_key"`
}

var (
	validLevels  = []string{LevelDebug, LevelInfo, LevelWarn, "warning", LevelError}
	validFormats = []string{FormatJSON, FormatConsole}
	validOutputs = []string{OutputConsole, OutputFile, OutputBoth}
)

// Validate 验证配置，空值视为使用默认值.
func (c *Config) Validate() error {
	if c == nil {
		return &ConfigError{Field: "config", Message: "config cannot be nil"}
	}

	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"level", c.Level, validLevels},
		{"format", c.Format, validFormats},
		{"output", c.Output, validOutputs},
	}
	for _, chk := range checks {
		if chk.value != "" && !oneOf(chk.value, chk.allowed) {
			return &ConfigError{
				Field:   chk.field,
				Message: "invalid value " + chk.value + ", expected one of " + strings.Join(chk.allowed, "|"),
			}
		}
	}

	if c.writesFile() && c.LogDir == "" {
		return &ConfigError{Field: "log_dir", Message: "log_dir is required when output is file or both"}
	}
	if c.FileName != "" && filepath.Base(c.FileName) != c.FileName {
		return &ConfigError{Field: "file_name", Message: "file_name must not contain a directory: " + c.FileName}
	}
	return nil
}

// ApplyDefaults 填充零值字段.
func (c *Config) ApplyDefaults() {
	setDefault(&c.ServiceName, "cronpoll")
	setDefault(&c.Level, LevelInfo)
	setDefault(&c.Format, FormatJSON)
	setDefault(&c.Output, OutputConsole)
	setDefault(&c.FileName, c.ServiceName+".log")
	setDefault(&c.TimeFormat, TimeFormatDateTime)
	setDefault(&c.TimeKey, "timestamp")
	setDefault(&c.MessageKey, "msg")
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// NewDevConfig 返回本地调试用配置：debug 级别、彩色控制台输出、记录调用位置.
func NewDevConfig() *Config {
	return &Config{
		Level:        LevelDebug,
		Format:       FormatConsole,
		Output:       OutputConsole,
		EnableCaller: true,
	}
}

func (c *Config) writesFile() bool {
	out := strings.ToLower(c.Output)
	return out == OutputFile || out == OutputBoth
}

func (c *Config) writesConsole() bool {
	out := strings.ToLower(c.Output)
	return out == OutputConsole || out == OutputBoth
}

func oneOf(value string, allowed []string) bool {
	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
