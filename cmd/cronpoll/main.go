// Command cronpoll 按配置文件中的 cron 表达式周期性执行命令.
//
//	cronpoll -config /etc/cronpoll/cronpoll.yaml
//
// 未指定 -config 时依次在当前目录和 /etc/cronpoll 中查找 cronpoll.yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/Tsukikage7/cronpoll/app"
	"github.com/Tsukikage7/cronpoll/config"
	"github.com/Tsukikage7/cronpoll/logger"
	"github.com/Tsukikage7/cronpoll/metrics"
	"github.com/Tsukikage7/cronpoll/scheduler"
	"github.com/Tsukikage7/cronpoll/server"
	"github.com/Tsukikage7/cronpoll/tracing"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "cronpoll: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.App.Version == "" || cfg.App.Version == "dev" {
		cfg.App.Version = version
	}

	log, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return err
	}

	tp, err := tracing.NewTracer(&cfg.Tracing, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return err
	}

	opts, err := schedulerOptions(cfg, log)
	if err != nil {
		return err
	}
	opts = append(opts, scheduler.WithTracerProvider(tp))

	var collector *metrics.PrometheusCollector
	if cfg.Metrics.Enabled {
		collector, err = metrics.NewMetrics(&cfg.Metrics)
		if err != nil {
			return err
		}
		opts = append(opts, scheduler.WithMetrics(collector))
	}

	sched, err := scheduler.New(opts...)
	if err != nil {
		return err
	}
	if err := registerJobs(sched, cfg.Jobs, log); err != nil {
		return err
	}

	a := app.New(
		app.Name(cfg.App.Name),
		app.Version(cfg.App.Version),
		app.Logger(log),
		app.GracefulTimeout(cfg.App.GracefulTimeout),
		app.RegisterCleanup("tracer", tp.Shutdown, 0),
		app.RegisterCleanup("logger", func(context.Context) error {
			_ = log.Sync()
			return nil
		}, 100),
	)
	a.Use(newSchedulerComponent(sched))

	if collector != nil {
		mux := http.NewServeMux()
		mux.Handle(collector.GetPath(), collector.GetHandler())
		mux.Handle("/jobs", jobsHandler(sched))
		mux.Handle("/healthz", healthHandler(sched))

		a.Use(server.NewHTTP(mux,
			server.WithHTTPName("metrics"),
			server.WithHTTPAddr(cfg.Metrics.Addr),
			server.WithHTTPLogger(log),
		))
	}

	return a.Run()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadWithSearch[config.Config]("cronpoll", []string{".", "/etc/cronpoll"},
		config.WithDefaults(config.Defaults()),
		config.WithEnvPrefix(config.EnvPrefix),
	)
}
