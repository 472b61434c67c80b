// internal/domain/schedule/materialize.go
package schedule

import "time"

// MaterializedPeriod is a PeriodTemplate bound to a concrete date.
type MaterializedPeriod struct {
	FriendlyName string
	Start        time.Time
	End          time.Time
}

// Materialize binds every period of tpl to the calendar date of date, keeping template order.
func Materialize(date time.Time, tpl DailyTemplate) []MaterializedPeriod {
	periods := make([]MaterializedPeriod, 0, len(tpl.Periods))
	for _, p := range tpl.Periods {
		periods = append(periods, MaterializedPeriod{
			FriendlyName: p.FriendlyName,
			Start:        p.Start.On(date),
			End:          p.End.On(date),
		})
	}
	return periods
}

// OffsetFromHours converts fractional hours to whole minutes, truncating toward zero.
func OffsetFromHours(hours float64) time.Duration {
	return time.Duration(int64(hours*60)) * time.Minute
}

// Correct returns a copy of periods with offset added to every start and end.
func Correct(periods []MaterializedPeriod, offset time.Duration) []MaterializedPeriod {
	out := make([]MaterializedPeriod, len(periods))
	for i, p := range periods {
		out[i] = MaterializedPeriod{
			FriendlyName: p.FriendlyName,
			Start:        p.Start.Add(offset),
			End:          p.End.Add(offset),
		}
	}
	return out
}
