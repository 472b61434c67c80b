// internal/domain/schedule/schedule.go
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidDefinition is returned by New for documents that cannot be compiled.
var ErrInvalidDefinition = errors.New("invalid schedule definition")

// Store resolves a calendar date to that day's template.
// Dates outside the store's coverage resolve to an empty template.
type Store interface {
	OnDate(date time.Time) DailyTemplate
}

// CalendarRule maps dates to a schedule type. Exactly one selector is set:
// Date, From+To (inclusive), or Weekday.
type CalendarRule struct {
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
	From     string `json:"from,omitempty" yaml:"from,omitempty"`
	To       string `json:"to,omitempty" yaml:"to,omitempty"`
	Weekday  string `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	Schedule string `json:"schedule" yaml:"schedule"`
}

// Definition is the wire form of a schedule, as published upstream.
type Definition struct {
	ScheduleTypes map[string]DailyTemplate `json:"schedule_types" yaml:"schedule_types"`
	Calendar      []CalendarRule           `json:"calendar" yaml:"calendar"`
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civil(t time.Time) civilDate {
	return civilDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d civilDate) before(o civilDate) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

type dateRange struct {
	from, to civilDate
	typeName string
}

// Schedule is the compiled, immutable form of a Definition.
type Schedule struct {
	types    map[string]DailyTemplate
	dates    map[civilDate]string
	ranges   []dateRange
	weekdays map[time.Weekday]string
}

var _ Store = (*Schedule)(nil)

// New compiles a definition. Exact dates take precedence over ranges, ranges over
// weekdays; within a tier the first rule wins.
func New(def Definition) (*Schedule, error) {
	s := &Schedule{
		types:    make(map[string]DailyTemplate, len(def.ScheduleTypes)),
		dates:    make(map[civilDate]string),
		weekdays: make(map[time.Weekday]string),
	}
	for name, tpl := range def.ScheduleTypes {
		s.types[name] = tpl
	}

	for i, rule := range def.Calendar {
		if _, ok := s.types[rule.Schedule]; !ok {
			return nil, fmt.Errorf("%w: calendar rule %d references unknown schedule type %q", ErrInvalidDefinition, i, rule.Schedule)
		}
		selectors := 0
		if rule.Date != "" {
			selectors++
		}
		if rule.From != "" || rule.To != "" {
			selectors++
		}
		if rule.Weekday != "" {
			selectors++
		}
		if selectors != 1 {
			return nil, fmt.Errorf("%w: calendar rule %d must set exactly one of date, from/to, weekday", ErrInvalidDefinition, i)
		}

		switch {
		case rule.Date != "":
			d, err := parseDate(rule.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: calendar rule %d: %v", ErrInvalidDefinition, i, err)
			}
			if _, exists := s.dates[d]; !exists {
				s.dates[d] = rule.Schedule
			}
		case rule.Weekday != "":
			wd, err := parseWeekday(rule.Weekday)
			if err != nil {
				return nil, fmt.Errorf("%w: calendar rule %d: %v", ErrInvalidDefinition, i, err)
			}
			if _, exists := s.weekdays[wd]; !exists {
				s.weekdays[wd] = rule.Schedule
			}
		default:
			if rule.From == "" || rule.To == "" {
				return nil, fmt.Errorf("%w: calendar rule %d: a range needs both from and to", ErrInvalidDefinition, i)
			}
			from, err := parseDate(rule.From)
			if err != nil {
				return nil, fmt.Errorf("%w: calendar rule %d: %v", ErrInvalidDefinition, i, err)
			}
			to, err := parseDate(rule.To)
			if err != nil {
				return nil, fmt.Errorf("%w: calendar rule %d: %v", ErrInvalidDefinition, i, err)
			}
			if to.before(from) {
				return nil, fmt.Errorf("%w: calendar rule %d: range %s..%s is reversed", ErrInvalidDefinition, i, rule.From, rule.To)
			}
			s.ranges = append(s.ranges, dateRange{from: from, to: to, typeName: rule.Schedule})
		}
	}
	return s, nil
}

// OnDate returns the template for the calendar date of date. Unmapped dates
// yield an empty template.
func (s *Schedule) OnDate(date time.Time) DailyTemplate {
	name, ok := s.typeFor(date)
	if !ok {
		return DailyTemplate{}
	}
	tpl := s.types[name]
	periods := make([]PeriodTemplate, len(tpl.Periods))
	copy(periods, tpl.Periods)
	return DailyTemplate{FriendlyName: tpl.FriendlyName, Periods: periods}
}

// TypeOn reports the schedule type name in effect on date, if any.
func (s *Schedule) TypeOn(date time.Time) (string, bool) {
	return s.typeFor(date)
}

func (s *Schedule) typeFor(date time.Time) (string, bool) {
	d := civil(date)
	if name, ok := s.dates[d]; ok {
		return name, true
	}
	for _, r := range s.ranges {
		if !d.before(r.from) && !r.to.before(d) {
			return r.typeName, true
		}
	}
	if name, ok := s.weekdays[date.Weekday()]; ok {
		return name, true
	}
	return "", false
}

func parseDate(s string) (civilDate, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return civilDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return civil(t), nil
}

func parseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if name == full || name == full[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
