package schedule

import (
	"time"

	"github.com/t3ls/fdtbridge/errs"
)

// DefaultBuffer is the delay added to computed refresh timestamps when the
// caller does not choose one; it absorbs upstream processing lag.
const DefaultBuffer = 120 * time.Minute

// Schedule is an immutable, validated set of refresh rules sharing one
// buffer. Evaluation is pure; a Schedule is safe for concurrent use.
type Schedule struct {
	rules  []Rule
	buffer time.Duration
}

// New validates the rule specs and returns a Schedule. Construction is the
// only place a schedule can fail; no partially valid Schedule is returned.
func New(specs []RuleSpec, buffer time.Duration) (*Schedule, error) {
	if len(specs) == 0 {
		return nil, errs.New("schedule.new", errs.CodeConfig,
			errs.WithMessage("schedule needs at least one refresh rule"))
	}
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := NewRule(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &Schedule{rules: rules, buffer: buffer}, nil
}

// Buffer returns the buffer applied to every computed timestamp.
func (s *Schedule) Buffer() time.Duration { return s.buffer }

// LatestRefresh returns the nearest occurrence of any rule at or before
// now, shifted forward by the buffer. An occurrence exactly at now counts
// as latest.
func (s *Schedule) LatestRefresh(now time.Time) time.Time {
	now = now.UTC()
	var latest time.Time
	for _, rule := range s.rules {
		candidate := rule.latestRefresh(now)
		if latest.IsZero() || candidate.After(latest) {
			latest = candidate
		}
	}
	return latest.Add(s.buffer)
}

// NextRefresh returns the nearest occurrence of any rule strictly after
// now, shifted forward by the buffer.
func (s *Schedule) NextRefresh(now time.Time) time.Time {
	now = now.UTC()
	var next time.Time
	for _, rule := range s.rules {
		candidate := rule.nextRefresh(now)
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next.Add(s.buffer)
}
