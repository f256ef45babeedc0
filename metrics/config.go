package metrics

// Config 指标监控配置.
type Config struct {
	// Enabled 是否启用指标
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// Path 指标暴露路径，默认 /metrics
	Path string `json:"path" yaml:"path" mapstructure:"path"`
	// Namespace 指标命名空间
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
	// Addr 指标 HTTP 服务监听地址
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Path:      "/metrics",
		Namespace: "cronpoll",
		Addr:      ":9090",
	}
}
