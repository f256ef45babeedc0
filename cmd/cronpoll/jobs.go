package main

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/Tsukikage7/cronpoll/config"
	"github.com/Tsukikage7/cronpoll/logger"
	"github.com/Tsukikage7/cronpoll/scheduler"
)

// maxOutput 失败时附带到错误信息中的输出长度上限.
const maxOutput = 512

// schedulerOptions 根据配置构造调度器选项.
func schedulerOptions(cfg *config.Config, log logger.Logger) ([]scheduler.Option, error) {
	loc, err := cfg.Scheduler.LoadLocation()
	if err != nil {
		return nil, err
	}

	opts := []scheduler.Option{
		scheduler.WithLogger(log),
		scheduler.WithLocation(loc),
		scheduler.WithPollInterval(cfg.Scheduler.PollInterval),
	}
	if cfg.Scheduler.GracePeriod > 0 {
		opts = append(opts, scheduler.WithGracePeriod(cfg.Scheduler.GracePeriod))
	}
	if cfg.Scheduler.MaxConcurrency > 0 {
		opts = append(opts, scheduler.WithMaxConcurrency(cfg.Scheduler.MaxConcurrency))
	}
	if cfg.Scheduler.DefaultTimeout > 0 {
		opts = append(opts, scheduler.WithDefaultTimeout(cfg.Scheduler.DefaultTimeout))
	}
	return opts, nil
}

// registerJobs 将配置中的命令任务注册到调度器.
func registerJobs(s scheduler.Scheduler, jobs []config.JobConfig, log logger.Logger) error {
	for _, jc := range jobs {
		var opts []scheduler.JobOption
		if jc.Timeout > 0 {
			opts = append(opts, scheduler.WithTimeout(jc.Timeout))
		}
		if jc.Retries > 0 {
			opts = append(opts, scheduler.WithRetry(jc.Retries, jc.RetryInterval))
		}

		if _, err := s.ScheduleCron(jc.Name, jc.Schedule, commandAction(jc, log), opts...); err != nil {
			return fmt.Errorf("注册任务 %s 失败: %w", jc.Name, err)
		}
	}
	return nil
}

// commandAction 返回执行外部命令的任务动作，ctx 取消时命令被终止.
func commandAction(jc config.JobConfig, log logger.Logger) scheduler.Action {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, jc.Command[0], jc.Command[1:]...)
		cmd.Dir = jc.Dir

		out := newTailWriter(maxOutput)
		cmd.Stdout = out
		cmd.Stderr = out

		err := cmd.Run()
		if log != nil {
			log.WithContext(ctx).With(
				logger.String("job", jc.Name),
				logger.Any("output_bytes", out.total),
			).Debug("[Command] 命令执行结束")
		}
		if err != nil {
			if tail := out.String(); tail != "" {
				return fmt.Errorf("%w: %s", err, tail)
			}
			return err
		}
		return nil
	}
}

// tailWriter 只保留最后 max 字节的输出.
//
// Stdout 和 Stderr 使用同一个 writer 时 exec 保证串行写入.
type tailWriter struct {
	max   int
	buf   []byte
	total int64
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max, buf: make([]byte, 0, max)}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.total += int64(n)
	if n >= w.max {
		w.buf = append(w.buf[:0], p[n-w.max:]...)
		return n, nil
	}
	if drop := len(w.buf) + n - w.max; drop > 0 {
		w.buf = append(w.buf[:0], w.buf[drop:]...)
	}
	w.buf = append(w.buf, p...)
	return n, nil
}

// String 返回保留的输出，被截断时以 "..." 开头且不含半个多字节字符.
func (w *tailWriter) String() string {
	b := w.buf
	truncated := w.total > int64(len(b))
	if truncated {
		for len(b) > 0 && !utf8.RuneStart(b[0]) {
			b = b[1:]
		}
	}

	s := strings.TrimSpace(string(b))
	if truncated && s != "" {
		s = "..." + s
	}
	return s
}
