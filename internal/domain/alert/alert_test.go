package alert

import (
	"testing"
	"time"

	"bell_cron_generator/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderAndMessages(t *testing.T) {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 19, 8, 50, 0, 0, time.UTC)

	got := Derive(schedule.MaterializedPeriod{FriendlyName: "Period 1", Start: start, End: end})

	want := [4]Alert{
		{Kind: KindBeginsSoon, Message: "Period 1 begins in 5 minutes", TriggerAt: start.Add(-5 * time.Minute)},
		{Kind: KindBeginsNow, Message: "Period 1 begins now!", TriggerAt: start},
		{Kind: KindEndsSoon, Message: "Period 1 ends in 5 minutes", TriggerAt: end.Add(-5 * time.Minute)},
		{Kind: KindEndsNow, Message: "Period 1 ends now!", TriggerAt: end},
	}
	assert.Equal(t, want, got)
}

func TestDeriveMonotonicForLongPeriods(t *testing.T) {
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	for _, length := range []time.Duration{6 * time.Minute, 50 * time.Minute, 3 * time.Hour} {
		p := schedule.MaterializedPeriod{FriendlyName: "P", Start: base.Add(8 * time.Hour), End: base.Add(8*time.Hour + length)}
		a := Derive(p)
		assert.False(t, a[1].TriggerAt.Before(a[0].TriggerAt))
		assert.True(t, a[1].TriggerAt.Before(a[2].TriggerAt))
		assert.False(t, a[3].TriggerAt.Before(a[2].TriggerAt))
	}
}

func TestDeriveAdjacentPeriodsShareTimestamp(t *testing.T) {
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	first := Derive(schedule.MaterializedPeriod{FriendlyName: "A", Start: base.Add(8 * time.Hour), End: base.Add(9 * time.Hour)})
	second := Derive(schedule.MaterializedPeriod{FriendlyName: "B", Start: base.Add(9 * time.Hour), End: base.Add(10 * time.Hour)})

	assert.Equal(t, first[3].TriggerAt, second[1].TriggerAt)
	assert.Equal(t, "A ends now!", first[3].Message)
	assert.Equal(t, "B begins now!", second[1].Message)
}
