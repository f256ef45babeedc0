// Package metrics 提供调度器的 Prometheus 指标收集功能.
//
// PrometheusCollector 实现 scheduler.MetricsRecorder:
//
//	collector := metrics.MustNewMetrics(metrics.DefaultConfig())
//	s := scheduler.MustNew(scheduler.WithMetrics(collector))
//	http.Handle(collector.GetPath(), collector.GetHandler())
package metrics

// NewMetrics 创建指标收集器.
func NewMetrics(cfg *Config) (*PrometheusCollector, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	return NewPrometheus(cfg)
}

// MustNewMetrics 创建指标收集器，失败时 panic.
func MustNewMetrics(cfg *Config) *PrometheusCollector {
	c, err := NewMetrics(cfg)
	if err != nil {
		panic(err)
	}
	return c
}
