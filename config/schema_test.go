package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const sampleDaemonConfig = `
app:
  name: nightly
  version: "1.2.0"
  graceful_timeout: 20s
scheduler:
  poll_interval: 1m
  grace_period: 10s
  location: UTC
  max_concurrency: 4
  default_timeout: 30m
logger:
  level: debug
  format: console
metrics:
  enabled: true
  addr: ":9191"
tracing:
  enabled: false
jobs:
  - name: backup
    schedule: "0 3 * * *"
    command: ["/usr/local/bin/backup", "--full"]
    timeout: 2h
    retries: 2
    retry_interval: 5m
  - name: cleanup
    schedule: "@hourly"
    command: ["find", "/tmp", "-mtime", "+7", "-delete"]
    dir: /tmp
`

// SchemaTestSuite 守护进程配置测试套件.
type SchemaTestSuite struct {
	suite.Suite
	dir string
}

func TestSchemaSuite(t *testing.T) {
	suite.Run(t, new(SchemaTestSuite))
}

func (s *SchemaTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *SchemaTestSuite) write(content string) string {
	path := filepath.Join(s.dir, "cronpoll.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *SchemaTestSuite) TestLoadFile() {
	cfg, err := LoadFile(s.write(sampleDaemonConfig))
	s.Require().NoError(err)

	s.Equal("nightly", cfg.App.Name)
	s.Equal("1.2.0", cfg.App.Version)
	s.Equal(20*time.Second, cfg.App.GracefulTimeout)

	s.Equal(time.Minute, cfg.Scheduler.PollInterval)
	s.Equal(10*time.Second, cfg.Scheduler.GracePeriod)
	s.Equal(4, cfg.Scheduler.MaxConcurrency)
	s.Equal(30*time.Minute, cfg.Scheduler.DefaultTimeout)
	loc, err := cfg.Scheduler.LoadLocation()
	s.Require().NoError(err)
	s.Equal("UTC", loc.String())

	s.Equal("debug", cfg.Logger.Level)
	s.Equal("nightly", cfg.Logger.ServiceName)
	s.True(cfg.Metrics.Enabled)
	s.Equal(":9191", cfg.Metrics.Addr)
	s.Equal("/metrics", cfg.Metrics.Path)
	s.False(cfg.Tracing.Enabled)

	s.Require().Len(cfg.Jobs, 2)
	backup := cfg.Jobs[0]
	s.Equal("backup", backup.Name)
	s.Equal([]string{"/usr/local/bin/backup", "--full"}, backup.Command)
	s.Equal(2*time.Hour, backup.Timeout)
	s.Equal(2, backup.Retries)
	s.Equal(5*time.Minute, backup.RetryInterval)
	s.Equal("/tmp", cfg.Jobs[1].Dir)
}

func (s *SchemaTestSuite) TestLoadFile_Defaults() {
	cfg, err := LoadFile(s.write("jobs: []\n"))
	s.Require().NoError(err)

	s.Equal("cronpoll", cfg.App.Name)
	s.Equal(30*time.Second, cfg.App.GracefulTimeout)
	s.Equal(time.Minute, cfg.Scheduler.PollInterval)
	s.Equal(5*time.Second, cfg.Scheduler.GracePeriod)
	s.Zero(cfg.Scheduler.MaxConcurrency)
	s.Equal("info", cfg.Logger.Level)
	s.Equal("cronpoll", cfg.Metrics.Namespace)

	loc, err := cfg.Scheduler.LoadLocation()
	s.Require().NoError(err)
	s.Equal(time.Local, loc)
}

func (s *SchemaTestSuite) TestLoadFile_EnvOverride() {
	s.T().Setenv("CRONPOLL_SCHEDULER_MAX_CONCURRENCY", "12")
	s.T().Setenv("CRONPOLL_SCHEDULER_POLL_INTERVAL", "30s")

	cfg, err := LoadFile(s.write(sampleDaemonConfig))
	s.Require().NoError(err)
	s.Equal(12, cfg.Scheduler.MaxConcurrency)
	s.Equal(30*time.Second, cfg.Scheduler.PollInterval)
}

func (s *SchemaTestSuite) TestValidate_Errors() {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad location",
			content: "scheduler:\n  location: Mars/Olympus\n",
			want:    "scheduler.location",
		},
		{
			name:    "negative concurrency",
			content: "scheduler:\n  max_concurrency: -1\n",
			want:    "max_concurrency",
		},
		{
			name:    "bad logger level",
			content: "logger:\n  level: loud\n",
			want:    "invalid log level",
		},
		{
			name:    "missing command",
			content: "jobs:\n  - name: a\n    schedule: \"* * * * *\"\n",
			want:    "command",
		},
		{
			name:    "seconds schedule",
			content: "jobs:\n  - name: a\n    schedule: \"0 * * * * *\"\n    command: [\"true\"]\n",
			want:    "seconds",
		},
		{
			name: "duplicate name",
			content: "jobs:\n" +
				"  - {name: a, schedule: \"* * * * *\", command: [\"true\"]}\n" +
				"  - {name: a, schedule: \"* * * * *\", command: [\"true\"]}\n",
			want: "任务名称重复",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := LoadFile(s.write(tt.content))
			s.ErrorIs(err, ErrInvalid)
			s.ErrorContains(err, tt.want)
		})
	}
}

func (s *SchemaTestSuite) TestJobConfig_Validate() {
	valid := JobConfig{Name: "a", Schedule: "*/5 * * * *", Command: []string{"true"}}
	s.NoError(valid.Validate())

	invalid := []JobConfig{
		{Schedule: "* * * * *", Command: []string{"true"}},
		{Name: "a", Command: []string{"true"}},
		{Name: "a", Schedule: "* * * * *", Command: []string{""}},
		{Name: "a", Schedule: "* * * * *", Command: []string{"true"}, Retries: -1},
		{Name: "a", Schedule: "* * * * *", Command: []string{"true"}, Timeout: -time.Second},
		{Name: "a", Schedule: "@every 1m", Command: []string{"true"}},
	}
	for _, job := range invalid {
		s.ErrorIs(job.Validate(), ErrInvalidJob)
	}
}

func (s *SchemaTestSuite) TestValidate_Nil() {
	var cfg *Config
	s.ErrorIs(cfg.Validate(), ErrNilConfig)
}
