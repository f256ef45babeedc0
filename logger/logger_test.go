package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// LoggerTestSuite logger 测试套件.
type LoggerTestSuite struct {
	suite.Suite
	tmpDir string
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (s *LoggerTestSuite) SetupTest() {
	s.tmpDir = s.T().TempDir()
}

func (s *LoggerTestSuite) TestNewLogger_NilConfig() {
	log, err := NewLogger(nil)
	s.Error(err)
	s.Nil(log)
}

func (s *LoggerTestSuite) TestNewLogger_DefaultConfig() {
	log, err := NewLogger(DefaultConfig())
	s.Require().NoError(err)
	s.NotNil(log)
	defer log.Close()
}

func (s *LoggerTestSuite) TestNewLogger_DevConfig() {
	log, err := NewLogger(NewDevConfig())
	s.Require().NoError(err)
	defer log.Close()

	s.NotPanics(func() {
		log.Debug("debug message")
		log.Debugf("debug %s", "formatted")
		log.Info("info message")
		log.Infof("info %s", "formatted")
		log.Warn("warn message")
		log.Warnf("warn %s", "formatted")
		log.Error("error message")
		log.Errorf("error %s", "formatted")
	})
}

func (s *LoggerTestSuite) TestNewLogger_InvalidConfig() {
	cases := []*Config{
		{Level: "invalid"},
		{Format: "xml"},
		{Output: "syslog"},
		{Output: OutputFile},
		{Output: OutputConsole, FileName: "logs/cronpoll.log"},
	}
	for _, c := range cases {
		log, err := NewLogger(c)
		s.Error(err)
		s.Nil(log)

		var cfgErr *ConfigError
		s.True(errors.As(err, &cfgErr))
	}
}

func (s *LoggerTestSuite) TestNewLogger_FileOutput() {
	config := &Config{
		Level:       LevelDebug,
		Output:      OutputFile,
		LogDir:      s.tmpDir,
		ServiceName: "cron-test",
	}

	log, err := NewLogger(config)
	s.Require().NoError(err)

	log.Info("written to file")
	s.Require().NoError(log.Close())

	data, err := os.ReadFile(filepath.Join(s.tmpDir, "cron-test.log"))
	s.Require().NoError(err)
	s.Contains(string(data), "written to file")
	s.Contains(string(data), `"service":"cron-test"`)
}

func (s *LoggerTestSuite) TestApplyDefaults() {
	config := &Config{}
	config.ApplyDefaults()

	s.Equal("cronpoll.log", config.FileName)
	s.Equal(LevelInfo, config.Level)
	s.Equal(FormatJSON, config.Format)
	s.Equal(OutputConsole, config.Output)
	s.Equal("cronpoll", config.ServiceName)
	s.Equal(TimeFormatDateTime, config.TimeFormat)
}

func (s *LoggerTestSuite) TestApplyDefaults_PreservesExistingValues() {
	config := &Config{Level: LevelWarn, Format: FormatConsole, ServiceName: "svc"}
	config.ApplyDefaults()

	s.Equal(LevelWarn, config.Level)
	s.Equal(FormatConsole, config.Format)
	s.Equal("svc", config.ServiceName)
}

func (s *LoggerTestSuite) TestParseLevel() {
	s.Equal(zapcore.DebugLevel, parseLevel("DEBUG"))
	s.Equal(zapcore.WarnLevel, parseLevel("warning"))
	s.Equal(zapcore.ErrorLevel, parseLevel(LevelError))
	s.Equal(zapcore.InfoLevel, parseLevel("unknown"))
}

// ZapWrapperTestSuite NewZap 包装测试套件.
type ZapWrapperTestSuite struct {
	suite.Suite
	logs *observer.ObservedLogs
	log  Logger
}

func TestZapWrapperSuite(t *testing.T) {
	suite.Run(t, new(ZapWrapperTestSuite))
}

func (s *ZapWrapperTestSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.log = NewZap(zap.New(core))
}

func (s *ZapWrapperTestSuite) TestWithFields() {
	s.log.With(String("job", "backup"), Int("attempt", 2), Err(errors.New("boom"))).Warn("job failed")

	s.Require().Equal(1, s.logs.Len())
	entry := s.logs.All()[0]
	s.Equal(zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	s.Equal("backup", fields["job"])
	s.EqualValues(2, fields["attempt"])
	s.Equal("boom", fields["error"])
}

func (s *ZapWrapperTestSuite) TestWithContext() {
	ctx := ContextWithExecutionID(context.Background(), "exec-1")
	s.log.WithContext(ctx).Info("running")
	s.log.WithContext(context.Background()).Info("plain")

	s.Require().Equal(2, s.logs.Len())
	s.Equal("exec-1", s.logs.All()[0].ContextMap()["executionId"])
	s.NotContains(s.logs.All()[1].ContextMap(), "executionId")
}

func (s *ZapWrapperTestSuite) TestFormatted() {
	s.log.Errorf("[Scheduler] %s", "stopped")
	s.Equal(1, s.logs.FilterMessageSnippet("stopped").Len())
	s.True(strings.HasPrefix(s.logs.All()[0].Message, "[Scheduler]"))
}

func (s *ZapWrapperTestSuite) TestNop() {
	log := NewNop()
	s.NotPanics(func() {
		log.With(String("k", "v")).Info("discarded")
		_ = log.Close()
	})
}

func (s *ZapWrapperTestSuite) TestExecutionIDFromContext() {
	_, ok := ExecutionIDFromContext(context.Background())
	s.False(ok)

	id, ok := ExecutionIDFromContext(ContextWithExecutionID(context.Background(), "abc"))
	s.True(ok)
	s.Equal("abc", id)
}
