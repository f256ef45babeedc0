package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tsukikage7/cronpoll/scheduler"
)

// PrometheusCollector Prometheus 指标收集器实现.
type PrometheusCollector struct {
	config *Config

	// 调度指标
	dispatchedTotal *prometheus.CounterVec
	skippedTotal    *prometheus.CounterVec
	prunedTotal     *prometheus.CounterVec
	executionsTotal *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	executing       prometheus.Gauge
	registered      prometheus.Gauge

	registry *prometheus.Registry
}

var _ scheduler.MetricsRecorder = (*PrometheusCollector)(nil)

// NewPrometheus 创建 Prometheus 指标收集器.
func NewPrometheus(cfg *Config) (*PrometheusCollector, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "cronpoll"
	}

	// 创建新的注册表，避免与默认注册表冲突
	registry := prometheus.NewRegistry()

	c := &PrometheusCollector{
		config:   cfg,
		registry: registry,
	}

	c.dispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "dispatched_total",
			Help:      "Total number of job executions submitted to the worker pool",
		},
		[]string{"job"},
	)

	c.skippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "skipped_total",
			Help:      "Total number of matched triggers that were not executed",
		},
		[]string{"job", "reason"},
	)

	c.prunedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pruned_total",
			Help:      "Total number of jobs removed because their trigger can never fire again",
		},
		[]string{"job"},
	)

	c.executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "executions_total",
			Help:      "Total number of finished job executions",
		},
		[]string{"job", "status"},
	)

	c.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Job execution duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"job"},
	)

	c.executing = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "executing",
			Help:      "Number of jobs currently executing",
		},
	)

	c.registered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "registered",
			Help:      "Number of registered jobs",
		},
	)

	// 注册所有指标
	cs := []prometheus.Collector{
		c.dispatchedTotal,
		c.skippedTotal,
		c.prunedTotal,
		c.executionsTotal,
		c.duration,
		c.executing,
		c.registered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}

	for _, collector := range cs {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegisterMetric, err)
		}
	}

	return c, nil
}

// JobDispatched 记录任务派发.
func (c *PrometheusCollector) JobDispatched(job string) {
	c.dispatchedTotal.WithLabelValues(job).Inc()
}

// JobSkipped 记录任务跳过.
func (c *PrometheusCollector) JobSkipped(job, reason string) {
	c.skippedTotal.WithLabelValues(job, reason).Inc()
}

// JobPruned 记录任务移除.
func (c *PrometheusCollector) JobPruned(job string) {
	c.prunedTotal.WithLabelValues(job).Inc()
}

// JobCompleted 记录任务执行结果和耗时.
func (c *PrometheusCollector) JobCompleted(job, status string, duration time.Duration) {
	c.executionsTotal.WithLabelValues(job, status).Inc()
	c.duration.WithLabelValues(job).Observe(duration.Seconds())
}

// SetExecuting 更新正在执行的任务数.
func (c *PrometheusCollector) SetExecuting(n int) {
	c.executing.Set(float64(n))
}

// SetRegistered 更新已注册的任务数.
func (c *PrometheusCollector) SetRegistered(n int) {
	c.registered.Set(float64(n))
}

// Registry 返回底层注册表.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

// GetHandler 返回 metrics 的 HTTP 处理器.
func (c *PrometheusCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetPath 返回 metrics 路径.
func (c *PrometheusCollector) GetPath() string {
	if c.config.Path == "" {
		return "/metrics"
	}
	return c.config.Path
}
