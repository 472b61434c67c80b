package schedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) TimeOfDay { return TimeOfDay{Hour: h, Minute: m} }

func testDefinition() Definition {
	return Definition{
		ScheduleTypes: map[string]DailyTemplate{
			"regular": {FriendlyName: "Regular", Periods: []PeriodTemplate{
				{FriendlyName: "Period 1", Start: tod(8, 0), End: tod(8, 50)},
				{FriendlyName: "Period 2", Start: tod(8, 55), End: tod(9, 45)},
			}},
			"late_start": {FriendlyName: "Late Start", Periods: []PeriodTemplate{
				{FriendlyName: "Period 1", Start: tod(9, 30), End: tod(10, 10)},
			}},
			"no_school": {FriendlyName: "No School"},
		},
		Calendar: []CalendarRule{
			{Weekday: "monday", Schedule: "regular"},
			{Weekday: "Tue", Schedule: "regular"},
			{Weekday: "wednesday", Schedule: "late_start"},
			{From: "2026-12-21", To: "2027-01-01", Schedule: "no_school"},
			{Date: "2026-12-23", Schedule: "late_start"},
			{Date: "2026-10-20", Schedule: "late_start"},
			{Date: "2026-10-20", Schedule: "no_school"},
		},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestOnDateRulePrecedence(t *testing.T) {
	s, err := New(testDefinition())
	require.NoError(t, err)

	tests := []struct {
		name     string
		date     time.Time
		wantType string
		periods  int
	}{
		{name: "weekday rule", date: day(2026, 10, 19), wantType: "Regular", periods: 2},
		{name: "abbreviated weekday", date: day(2026, 10, 27), wantType: "Regular", periods: 2},
		{name: "first exact date wins", date: day(2026, 10, 20), wantType: "Late Start", periods: 1},
		{name: "range beats weekday", date: day(2026, 12, 21), wantType: "No School", periods: 0},
		{name: "range inclusive end", date: day(2027, 1, 1), wantType: "No School", periods: 0},
		{name: "exact date beats range", date: day(2026, 12, 23), wantType: "Late Start", periods: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.OnDate(tt.date)
			assert.Equal(t, tt.wantType, got.FriendlyName)
			assert.Len(t, got.Periods, tt.periods)
		})
	}
}

func TestOnDateUnmappedIsEmpty(t *testing.T) {
	s, err := New(testDefinition())
	require.NoError(t, err)

	// Saturday, no rule covers it.
	got := s.OnDate(day(2026, 10, 24))
	assert.Empty(t, got.Periods)
	_, ok := s.TypeOn(day(2026, 10, 24))
	assert.False(t, ok)
}

func TestOnDateReturnsCopy(t *testing.T) {
	s, err := New(testDefinition())
	require.NoError(t, err)

	first := s.OnDate(day(2026, 10, 19))
	first.Periods[0].FriendlyName = "mutated"

	second := s.OnDate(day(2026, 10, 19))
	assert.Equal(t, "Period 1", second.Periods[0].FriendlyName)
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	types := map[string]DailyTemplate{"regular": {}}
	tests := []struct {
		name string
		rule CalendarRule
	}{
		{name: "unknown type", rule: CalendarRule{Weekday: "monday", Schedule: "missing"}},
		{name: "no selector", rule: CalendarRule{Schedule: "regular"}},
		{name: "two selectors", rule: CalendarRule{Date: "2026-10-19", Weekday: "monday", Schedule: "regular"}},
		{name: "bad date", rule: CalendarRule{Date: "19/10/2026", Schedule: "regular"}},
		{name: "bad weekday", rule: CalendarRule{Weekday: "someday", Schedule: "regular"}},
		{name: "half range", rule: CalendarRule{From: "2026-10-19", Schedule: "regular"}},
		{name: "reversed range", rule: CalendarRule{From: "2026-10-20", To: "2026-10-19", Schedule: "regular"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Definition{ScheduleTypes: types, Calendar: []CalendarRule{tt.rule}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDefinition))
		})
	}
}

func TestDefinitionJSON(t *testing.T) {
	raw := `{
		"schedule_types": {
			"regular": {
				"friendly_name": "Regular",
				"periods": [
					{"friendly_name": "Period 1", "start_time_of_day": "08:00", "end_time_of_day": "08:50:30"}
				]
			}
		},
		"calendar": [{"weekday": "monday", "schedule": "regular"}]
	}`
	var def Definition
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	p := def.ScheduleTypes["regular"].Periods[0]
	assert.Equal(t, TimeOfDay{Hour: 8}, p.Start)
	assert.Equal(t, TimeOfDay{Hour: 8, Minute: 50, Second: 30}, p.End)
	assert.Equal(t, "monday", def.Calendar[0].Weekday)
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("23:15")
	require.NoError(t, err)
	assert.Equal(t, "23:15:00", got.String())

	for _, bad := range []string{"24:00", "12:60", "8", "08:00:00:00", "aa:bb", "12:00:61"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}
