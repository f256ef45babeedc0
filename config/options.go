package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Option 加载选项.
type Option func(*loadOptions)

type loadOptions struct {
	envPrefix     string
	automaticEnv  bool
	allowEmptyEnv bool
	format        string
	defaults      map[string]any
}

func newLoadOptions(opts []Option) *loadOptions {
	o := &loadOptions{automaticEnv: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnvPrefix 设置环境变量前缀.
//
// 前缀 "CRONPOLL" 把 CRONPOLL_SCHEDULER_POLL_INTERVAL 映射到 scheduler.poll_interval.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) { o.envPrefix = prefix }
}

// WithAutomaticEnv 开关环境变量覆盖，默认开启.
func WithAutomaticEnv(enabled bool) Option {
	return func(o *loadOptions) { o.automaticEnv = enabled }
}

// WithAllowEmptyEnv 允许值为空的环境变量覆盖配置.
func WithAllowEmptyEnv() Option {
	return func(o *loadOptions) { o.allowEmptyEnv = true }
}

// WithDefaults 设置默认值.
//
// 只有出现在默认值或配置文件中的键才会被环境变量覆盖.
func WithDefaults(defaults map[string]any) Option {
	return func(o *loadOptions) { o.defaults = defaults }
}

// WithFormat 显式指定文件格式，用于没有扩展名的文件.
func WithFormat(format string) Option {
	return func(o *loadOptions) { o.format = format }
}

// viper 按选项创建 viper 实例.
func (o *loadOptions) viper() *viper.Viper {
	v := viper.New()
	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}
	if o.format != "" {
		v.SetConfigType(o.format)
	}
	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if o.automaticEnv {
		v.AutomaticEnv()
	}
	v.AllowEmptyEnv(o.allowEmptyEnv)
	return v
}
