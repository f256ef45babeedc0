package config

import (
	"fmt"
	"time"

	"github.com/Tsukikage7/cronpoll/logger"
	"github.com/Tsukikage7/cronpoll/metrics"
	"github.com/Tsukikage7/cronpoll/tracing"
	"github.com/Tsukikage7/cronpoll/trigger"
)

// EnvPrefix cronpoll 环境变量前缀.
const EnvPrefix = "CRONPOLL"

// Config cronpoll 守护进程配置.
type Config struct {
	App       AppConfig       `json:"app" yaml:"app" mapstructure:"app"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler" mapstructure:"scheduler"`
	Logger    logger.Config   `json:"logger" yaml:"logger" mapstructure:"logger"`
	Metrics   metrics.Config  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Tracing   tracing.Config  `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
	Jobs      []JobConfig     `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}

// AppConfig 应用配置.
type AppConfig struct {
	Name            string        `json:"name" yaml:"name" mapstructure:"name"`
	Version         string        `json:"version" yaml:"version" mapstructure:"version"`
	GracefulTimeout time.Duration `json:"graceful_timeout" yaml:"graceful_timeout" mapstructure:"graceful_timeout"`
}

// SchedulerConfig 调度器配置.
type SchedulerConfig struct {
	// PollInterval 轮询间隔，默认 1m
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`
	// GracePeriod 关闭时等待任务完成的时间，默认 5s
	GracePeriod time.Duration `json:"grace_period" yaml:"grace_period" mapstructure:"grace_period"`
	// Location 解析 cron 表达式使用的时区，空表示本地时区
	Location string `json:"location" yaml:"location" mapstructure:"location"`
	// MaxConcurrency 最大并发任务数，0 表示不限制
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" mapstructure:"max_concurrency"`
	// DefaultTimeout 任务默认超时，0 表示不限制
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout" mapstructure:"default_timeout"`
}

// JobConfig 命令任务配置.
type JobConfig struct {
	Name          string        `json:"name" yaml:"name" mapstructure:"name"`
	Schedule      string        `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Command       []string      `json:"command" yaml:"command" mapstructure:"command"`
	Dir           string        `json:"dir" yaml:"dir" mapstructure:"dir"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Retries       int           `json:"retries" yaml:"retries" mapstructure:"retries"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval" mapstructure:"retry_interval"`
}

// Defaults 返回 viper 默认值.
//
// 只有出现在默认值或配置文件中的键才能被环境变量覆盖.
func Defaults() map[string]any {
	return map[string]any{
		"app.name":                  "cronpoll",
		"app.version":               "dev",
		"app.graceful_timeout":      "30s",
		"scheduler.poll_interval":   "1m",
		"scheduler.grace_period":    "5s",
		"scheduler.location":        "",
		"scheduler.max_concurrency": 0,
		"scheduler.default_timeout": "0s",
		"logger.level":              logger.LevelInfo,
		"logger.format":             logger.FormatJSON,
		"logger.output":             logger.OutputConsole,
		"metrics.enabled":           false,
		"metrics.path":              "/metrics",
		"metrics.namespace":         "cronpoll",
		"metrics.addr":              ":9090",
		"tracing.enabled":           false,
		"tracing.sampling_rate":     1.0,
	}
}

// LoadFile 从文件加载守护进程配置，环境变量前缀为 CRONPOLL.
func LoadFile(path string, opts ...Option) (*Config, error) {
	base := []Option{WithDefaults(Defaults()), WithEnvPrefix(EnvPrefix)}
	return Load[Config](path, append(base, opts...)...)
}

// ApplyDefaults 填充零值字段.
func (c *Config) ApplyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cronpoll"
	}
	if c.App.GracefulTimeout <= 0 {
		c.App.GracefulTimeout = 30 * time.Second
	}
	if c.Scheduler.PollInterval <= 0 {
		c.Scheduler.PollInterval = time.Minute
	}
	if c.Logger.ServiceName == "" {
		c.Logger.ServiceName = c.App.Name
	}
	c.Logger.ApplyDefaults()
}

// Validate 验证配置.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Scheduler.GracePeriod < 0 {
		return fmt.Errorf("scheduler.grace_period 不能为负数: %v", c.Scheduler.GracePeriod)
	}
	if c.Scheduler.MaxConcurrency < 0 {
		return fmt.Errorf("scheduler.max_concurrency 不能为负数: %d", c.Scheduler.MaxConcurrency)
	}
	if _, err := c.Scheduler.LoadLocation(); err != nil {
		return err
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	for i, job := range c.Jobs {
		if err := job.Validate(); err != nil {
			return fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if _, ok := seen[job.Name]; ok {
			return fmt.Errorf("jobs[%d]: %w: 任务名称重复: %s", i, ErrInvalidJob, job.Name)
		}
		seen[job.Name] = struct{}{}
	}
	return nil
}

// LoadLocation 返回时区，空字符串表示本地时区.
func (c *SchedulerConfig) LoadLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("scheduler.location 无效: %w", err)
	}
	return loc, nil
}

// Validate 验证任务配置.
func (j *JobConfig) Validate() error {
	switch {
	case j.Name == "":
		return fmt.Errorf("%w: name 不能为空", ErrInvalidJob)
	case j.Schedule == "":
		return fmt.Errorf("%w: %s: schedule 不能为空", ErrInvalidJob, j.Name)
	case len(j.Command) == 0 || j.Command[0] == "":
		return fmt.Errorf("%w: %s: command 不能为空", ErrInvalidJob, j.Name)
	case j.Retries < 0:
		return fmt.Errorf("%w: %s: retries 不能为负数", ErrInvalidJob, j.Name)
	case j.Timeout < 0 || j.RetryInterval < 0:
		return fmt.Errorf("%w: %s: timeout 和 retry_interval 不能为负数", ErrInvalidJob, j.Name)
	}
	if _, err := trigger.Parse(j.Schedule); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidJob, j.Name, err)
	}
	return nil
}
