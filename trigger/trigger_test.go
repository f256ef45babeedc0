package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// CronTestSuite Cron 触发器测试套件.
type CronTestSuite struct {
	suite.Suite
	base time.Time
}

func TestCronSuite(t *testing.T) {
	suite.Run(t, new(CronTestSuite))
}

func (s *CronTestSuite) SetupTest() {
	// 2024-01-01 是周一
	s.base = time.Date(2024, 1, 1, 2, 0, 30, 0, time.UTC)
}

func (s *CronTestSuite) TestParse_Errors() {
	_, err := Parse("")
	s.ErrorIs(err, ErrEmptyExpression)

	_, err = Parse("   ")
	s.ErrorIs(err, ErrEmptyExpression)

	_, err = Parse("0 0 2 * * *")
	s.ErrorIs(err, ErrSecondsUnsupported)

	_, err = Parse("CRON_TZ=UTC 0 0 2 * * *")
	s.ErrorIs(err, ErrSecondsUnsupported)

	_, err = Parse("@every 1m")
	s.ErrorIs(err, ErrUnsupportedSchedule)

	_, err = Parse("61 * * * *")
	s.ErrorIs(err, ErrInvalidExpression)

	_, err = Parse("not a cron")
	s.ErrorIs(err, ErrInvalidExpression)
}

func (s *CronTestSuite) TestMustParse() {
	s.NotPanics(func() { MustParse("@daily") })
	s.Panics(func() { MustParse("* * * * * *") })
}

func (s *CronTestSuite) TestMatches_IgnoresSeconds() {
	c := MustParse("0 2 * * *")

	s.True(c.Matches(s.base))
	s.True(c.Matches(s.base.Add(29 * time.Second)))
	s.False(c.Matches(s.base.Add(time.Minute)))
	s.False(c.Matches(s.base.Add(-time.Minute)))
}

func (s *CronTestSuite) TestMatches_EveryMinute() {
	c := MustParse("* * * * *")
	for i := 0; i < 120; i++ {
		s.True(c.Matches(s.base.Add(time.Duration(i) * time.Minute)))
	}
}

func (s *CronTestSuite) TestMatches_DayOfWeek() {
	c := MustParse("0 9 * * 1") // 周一 09:00
	monday := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	s.True(c.Matches(monday))
	s.False(c.Matches(monday.AddDate(0, 0, 1)))
	s.True(c.Matches(monday.AddDate(0, 0, 7)))
}

func (s *CronTestSuite) TestNext_IncludesCurrentMinute() {
	c := MustParse("0 2 * * *")

	next, ok := c.Next(s.base)
	s.True(ok)
	s.Equal(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC), next)
}

func (s *CronTestSuite) TestNext_FollowingDay() {
	c := MustParse("0 2 * * *")

	next, ok := c.Next(s.base.Add(time.Minute))
	s.True(ok)
	s.Equal(time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC), next)
}

func (s *CronTestSuite) TestNext_Impossible() {
	c := MustParse("0 0 30 2 *") // 2 月 30 日

	_, ok := c.Next(s.base)
	s.False(ok)
	s.False(c.Matches(s.base))
}

func (s *CronTestSuite) TestWithLocation() {
	tokyo := time.FixedZone("JST", 9*3600)
	c := MustParse("0 11 * * *", WithLocation(tokyo))

	// 02:00 UTC == 11:00 JST
	s.True(c.Matches(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)))
	s.Equal(tokyo, c.Location())
}

func (s *CronTestSuite) TestExpressionLocationWins() {
	c := MustParse("CRON_TZ=UTC 0 2 * * *", WithLocation(time.FixedZone("X", 3600)))

	s.Equal(time.UTC, c.Location())
	s.True(c.Matches(s.base))
}

func (s *CronTestSuite) TestString() {
	s.Equal("@hourly", MustParse(" @hourly ").String())
}

// OnceTestSuite 一次性触发器测试套件.
type OnceTestSuite struct {
	suite.Suite
}

func TestOnceSuite(t *testing.T) {
	suite.Run(t, new(OnceTestSuite))
}

func (s *OnceTestSuite) TestLifecycle() {
	at := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	o := At(at)

	before := at.Add(-10 * time.Minute)
	next, ok := o.Next(before)
	s.True(ok)
	s.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), next)
	s.False(o.Matches(before))

	// 目标分钟内
	during := time.Date(2024, 5, 1, 12, 30, 5, 0, time.UTC)
	s.True(o.Matches(during))
	_, ok = o.Next(during)
	s.True(ok)

	// 目标分钟之后
	after := at.Add(time.Minute)
	s.False(o.Matches(after))
	_, ok = o.Next(after)
	s.False(ok)
}

func (s *OnceTestSuite) TestString() {
	o := At(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	s.Equal("@at 2024-05-01T12:30:00Z", o.String())
}
