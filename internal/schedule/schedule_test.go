package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/t3ls/fdtbridge/errs"
)

func mustSchedule(t *testing.T, buffer time.Duration, specs ...RuleSpec) *Schedule {
	t.Helper()
	s, err := New(specs, buffer)
	require.NoError(t, err)
	return s
}

func monthly(day int, tod string) RuleSpec {
	return RuleSpec{Cycle: "monthly", Day: day, Time: tod}
}

func weekly(day, tod string) RuleSpec {
	return RuleSpec{Cycle: "weekly", Day: day, Time: tod}
}

func TestMonthlyLastDayTracksMonthEndAcrossLeapYears(t *testing.T) {
	s := mustSchedule(t, 0, monthly(-1, "02:00:00"))

	leapNow := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 2, 29, 2, 0, 0, 0, time.UTC), s.LatestRefresh(leapNow))

	plainNow := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 2, 28, 2, 0, 0, 0, time.UTC), s.LatestRefresh(plainNow))
}

func TestMonthlyDay31ClampsInsideShortMonth(t *testing.T) {
	s := mustSchedule(t, 0, monthly(31, "02:00:00"))

	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 30, 2, 0, 0, 0, time.UTC), s.LatestRefresh(now))

	earlier := time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 5, 31, 2, 0, 0, 0, time.UTC), s.LatestRefresh(earlier))
	require.Equal(t, time.Date(2025, 6, 30, 2, 0, 0, 0, time.UTC), s.NextRefresh(earlier))
}

func TestMonthlyNegativeDayBeyondMonthClampsToFirstDay(t *testing.T) {
	s := mustSchedule(t, 0, monthly(-31, "02:00:00"))

	now := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC), s.LatestRefresh(now))
}

func TestWeeklyMondayFromWednesday(t *testing.T) {
	s := mustSchedule(t, 0, weekly("Monday", "02:00:00"))

	// 2025-06-18 is a Wednesday.
	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 16, 2, 0, 0, 0, time.UTC), s.LatestRefresh(now))
	require.Equal(t, time.Date(2025, 6, 23, 2, 0, 0, 0, time.UTC), s.NextRefresh(now))
}

func TestWeeklyWeekdayNameIsCaseInsensitive(t *testing.T) {
	upper := mustSchedule(t, 0, weekly("MONDAY", "02:00:00"))
	lower := mustSchedule(t, 0, weekly("monday", "02:00:00"))
	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.Equal(t, lower.LatestRefresh(now), upper.LatestRefresh(now))
}

func TestOccurrenceExactlyAtNowCountsAsLatest(t *testing.T) {
	s := mustSchedule(t, 0, weekly("Monday", "02:00:00"))

	now := time.Date(2025, 6, 16, 2, 0, 0, 0, time.UTC)
	require.Equal(t, now, s.LatestRefresh(now))
	require.Equal(t, now.AddDate(0, 0, 7), s.NextRefresh(now))
}

func TestBufferShiftsBothResultsForward(t *testing.T) {
	plain := mustSchedule(t, 0, weekly("Monday", "02:00:00"))
	buffered := mustSchedule(t, time.Hour, weekly("Monday", "02:00:00"))

	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.Equal(t, plain.LatestRefresh(now).Add(time.Hour), buffered.LatestRefresh(now))
	require.Equal(t, plain.NextRefresh(now).Add(time.Hour), buffered.NextRefresh(now))
}

func TestMultiRuleCombinesMaxLatestMinNext(t *testing.T) {
	s := mustSchedule(t, time.Hour, monthly(1, "02:00:00"), weekly("Friday", "02:00:00"))

	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	// Friday 2025-06-13 beats monthly 2025-06-01 on the latest side.
	require.Equal(t, time.Date(2025, 6, 13, 3, 0, 0, 0, time.UTC), s.LatestRefresh(now))
	// Friday 2025-06-20 beats monthly 2025-07-01 on the next side.
	require.Equal(t, time.Date(2025, 6, 20, 3, 0, 0, 0, time.UTC), s.NextRefresh(now))
}

func TestLatestNeverAfterNowAndNextAlwaysAfterNow(t *testing.T) {
	s := mustSchedule(t, 0, monthly(15, "06:30:00"), weekly("Tuesday", "23:59:59"), monthly(-2, "00:00:00"))

	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 3, 15, 6, 30, 0, 0, time.UTC),
		time.Date(2025, 7, 4, 9, 15, 0, 0, time.UTC),
	}
	for _, now := range instants {
		latest := s.LatestRefresh(now)
		next := s.NextRefresh(now)
		require.False(t, latest.After(now), "latest %v after now %v", latest, now)
		require.True(t, next.After(now), "next %v not after now %v", next, now)
	}
}

func TestNewRejectsInvalidRules(t *testing.T) {
	cases := []struct {
		name string
		spec RuleSpec
	}{
		{"unknown cycle", RuleSpec{Cycle: "daily", Day: 1, Time: "02:00:00"}},
		{"day zero", monthly(0, "02:00:00")},
		{"day too large", monthly(32, "02:00:00")},
		{"day too negative", monthly(-32, "02:00:00")},
		{"monthly string day", RuleSpec{Cycle: "monthly", Day: "first", Time: "02:00:00"}},
		{"weekly integer day", RuleSpec{Cycle: "weekly", Day: 1, Time: "02:00:00"}},
		{"unknown weekday", weekly("Mondy", "02:00:00")},
		{"bad time format", weekly("Monday", "2:00")},
		{"hour out of range", weekly("Monday", "25:00:00")},
		{"minute out of range", weekly("Monday", "02:61:00")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New([]RuleSpec{tc.spec}, 0)
			require.Error(t, err)
			require.True(t, errs.HasCode(err, errs.CodeConfig))
		})
	}
}

func TestNewRequiresAtLeastOneRule(t *testing.T) {
	_, err := New(nil, 0)
	require.Error(t, err)
	require.True(t, errs.HasCode(err, errs.CodeConfig))
}

func TestMonthlyDayDecodedFromJSONFloat(t *testing.T) {
	// json decodes integer days into float64.
	s := mustSchedule(t, 0, RuleSpec{Cycle: "monthly", Day: float64(1), Time: "02:00:00"})
	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), s.LatestRefresh(now))

	_, err := New([]RuleSpec{{Cycle: "monthly", Day: 1.5, Time: "02:00:00"}}, 0)
	require.Error(t, err)
}

func TestParseYAMLDocument(t *testing.T) {
	doc := []byte(`
buffer: 60m
refreshes:
  - cycle: monthly
    day: 1
    time: "02:00:00"
  - cycle: weekly
    day: Monday
    time: "02:00:00"
`)
	s, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, time.Hour, s.Buffer())

	now := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC), s.LatestRefresh(now))
}

func TestParseDefaultsBuffer(t *testing.T) {
	s, err := Parse([]byte("refreshes:\n  - cycle: monthly\n    day: 1\n    time: \"02:00:00\"\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultBuffer, s.Buffer())
}

func TestParseRejectsBadBuffer(t *testing.T) {
	_, err := Parse([]byte("buffer: soon\nrefreshes:\n  - cycle: monthly\n    day: 1\n    time: \"02:00:00\"\n"))
	require.Error(t, err)
	require.True(t, errs.HasCode(err, errs.CodeConfig))
}
