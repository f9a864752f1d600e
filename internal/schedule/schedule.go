// Package schedule parses check cycle schedules.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule decides when the next check cycle starts.
type Schedule interface {
	cron.Schedule
	fmt.Stringer
}

// Parse parses a schedule specification: either a duration like "5m" or
// "1h30m", or a cron expression like "0 * * * *" or "@hourly".
func Parse(spec string) (Schedule, error) {
	if s, err := ParseInterval(spec); err == nil {
		return s, nil
	}

	return ParseCron(spec)
}

// IntervalSchedule runs cycles back to back with a fixed gap.
type IntervalSchedule struct {
	Interval time.Duration
}

func ParseInterval(spec string) (IntervalSchedule, error) {
	d, err := time.ParseDuration(spec)
	if err != nil {
		return IntervalSchedule{}, err
	}
	if d <= 0 {
		return IntervalSchedule{}, fmt.Errorf("interval must be positive: %s", spec)
	}
	return IntervalSchedule{d}, nil
}

func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return s.Interval.String()
}

// CronSchedule runs cycles on a cron expression.
type CronSchedule struct {
	spec     string
	schedule cron.Schedule
}

func ParseCron(spec string) (CronSchedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return CronSchedule{}, err
	}
	return CronSchedule{spec: spec, schedule: s}, nil
}

func (s CronSchedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s CronSchedule) String() string {
	return s.spec
}
