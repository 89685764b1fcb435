// Package schedule evaluates calendar-cycle refresh rules to compute
// repeatable ingestion windows.
package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/t3ls/fdtbridge/errs"
)

// Cycle names a supported refresh cadence.
type Cycle string

const (
	// CycleMonthly refreshes on a fixed day of the month.
	CycleMonthly Cycle = "monthly"
	// CycleWeekly refreshes on a fixed weekday.
	CycleWeekly Cycle = "weekly"
)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

var timeOfDayPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})$`)

// RuleSpec is the construction input for one refresh rule. Day holds an
// integer for monthly cycles (1..31, or -1..-31 counted from the month
// end) and a weekday name for weekly cycles.
type RuleSpec struct {
	Cycle string `yaml:"cycle" json:"cycle"`
	Day   any    `yaml:"day" json:"day"`
	Time  string `yaml:"time" json:"time"`
}

// Rule is one validated refresh point. Zero value is invalid; construct
// through NewRule.
type Rule struct {
	cycle   Cycle
	day     int
	weekday time.Weekday
	hour    int
	minute  int
	second  int
}

// NewRule validates a spec and returns the rule. All validation happens
// here; evaluation can no longer fail.
func NewRule(spec RuleSpec) (Rule, error) {
	const op = "schedule.rule"

	cycle := Cycle(strings.ToLower(strings.TrimSpace(spec.Cycle)))
	if cycle != CycleMonthly && cycle != CycleWeekly {
		return Rule{}, errs.New(op, errs.CodeConfig,
			errs.WithMessage(fmt.Sprintf("unsupported cycle %q, supported cycles are %q and %q", spec.Cycle, CycleMonthly, CycleWeekly)))
	}

	hour, minute, second, err := parseTimeOfDay(spec.Time)
	if err != nil {
		return Rule{}, err
	}

	rule := Rule{cycle: cycle, day: 0, weekday: time.Sunday, hour: hour, minute: minute, second: second}

	switch cycle {
	case CycleWeekly:
		name, ok := spec.Day.(string)
		if !ok {
			return Rule{}, errs.New(op, errs.CodeConfig,
				errs.WithMessage(fmt.Sprintf("weekly cycle expects a weekday name, got %T", spec.Day)))
		}
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return Rule{}, errs.New(op, errs.CodeConfig,
				errs.WithMessage(fmt.Sprintf("unsupported weekday %q", name)))
		}
		rule.weekday = weekday
	case CycleMonthly:
		day, err := intDay(spec.Day)
		if err != nil {
			return Rule{}, err
		}
		if day == 0 {
			return Rule{}, errs.New(op, errs.CodeConfig,
				errs.WithMessage("day cannot be 0, use the n-th or -n-th day of the month"))
		}
		if day > 31 || day < -31 {
			return Rule{}, errs.New(op, errs.CodeConfig,
				errs.WithMessage(fmt.Sprintf("day %d out of range, expected 1..31 or -31..-1", day)))
		}
		rule.day = day
	}

	return rule, nil
}

func parseTimeOfDay(raw string) (int, int, int, error) {
	const op = "schedule.rule"
	match := timeOfDayPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return 0, 0, 0, errs.New(op, errs.CodeConfig,
			errs.WithMessage(fmt.Sprintf("invalid time %q, expected HH:MM:SS", raw)))
	}
	var hour, minute, second int
	_, _ = fmt.Sscanf(match[1], "%d", &hour)
	_, _ = fmt.Sscanf(match[2], "%d", &minute)
	_, _ = fmt.Sscanf(match[3], "%d", &second)
	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, errs.New(op, errs.CodeConfig,
			errs.WithMessage(fmt.Sprintf("time %q out of range", raw)))
	}
	return hour, minute, second, nil
}

// intDay normalises the decoded forms an integer day can arrive in
// (yaml gives int, json gives float64).
func intDay(v any) (int, error) {
	const op = "schedule.rule"
	switch day := v.(type) {
	case int:
		return day, nil
	case int64:
		return int(day), nil
	case float64:
		if day != math.Trunc(day) {
			return 0, errs.New(op, errs.CodeConfig,
				errs.WithMessage(fmt.Sprintf("monthly day %v is not an integer", day)))
		}
		return int(day), nil
	default:
		return 0, errs.New(op, errs.CodeConfig,
			errs.WithMessage(fmt.Sprintf("monthly cycle expects an integer day, got %T", v)))
	}
}

// daysInMonth returns the day count of the given month, leap-aware.
func daysInMonth(year int, month time.Month) int {
	lengths := [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if month == time.February && isLeapYear(year) {
		return 29
	}
	return lengths[month]
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// monthlyCandidate places the rule's occurrence inside the given month.
// A day beyond the month length clamps to the nearest valid day instead
// of rolling into a neighbouring month.
func (r Rule) monthlyCandidate(year int, month time.Month) time.Time {
	dim := daysInMonth(year, month)
	day := r.day
	if day > dim {
		day = dim
	}
	if day < -dim {
		day = -dim
	}
	if day < 0 {
		day = dim + 1 + day
	}
	return time.Date(year, month, day, r.hour, r.minute, r.second, 0, time.UTC)
}

// weeklyCandidate places the rule's next occurrence on or after now's date.
func (r Rule) weeklyCandidate(now time.Time) time.Time {
	year, month, day := now.Date()
	offset := (int(r.weekday) - int(now.Weekday()) + 7) % 7
	return time.Date(year, month, day+offset, r.hour, r.minute, r.second, 0, time.UTC)
}

// latestRefresh returns the nearest occurrence at or before now.
func (r Rule) latestRefresh(now time.Time) time.Time {
	switch r.cycle {
	case CycleWeekly:
		candidate := r.weeklyCandidate(now)
		if candidate.After(now) {
			candidate = candidate.AddDate(0, 0, -7)
		}
		return candidate
	default:
		year, month, _ := now.Date()
		candidate := r.monthlyCandidate(year, month)
		if candidate.After(now) {
			prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
			candidate = r.monthlyCandidate(prev.Year(), prev.Month())
		}
		return candidate
	}
}

// nextRefresh returns the nearest occurrence strictly after now.
func (r Rule) nextRefresh(now time.Time) time.Time {
	switch r.cycle {
	case CycleWeekly:
		candidate := r.weeklyCandidate(now)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	default:
		year, month, _ := now.Date()
		candidate := r.monthlyCandidate(year, month)
		if !candidate.After(now) {
			next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
			candidate = r.monthlyCandidate(next.Year(), next.Month())
		}
		return candidate
	}
}
