// internal/domain/alert/alert.go
package alert

import (
	"fmt"
	"time"

	"bell_cron_generator/internal/domain/schedule"
)

// LeadTime is how long before a boundary the "in 5 minutes" alerts fire.
const LeadTime = 5 * time.Minute

// Kind identifies which boundary event an alert announces.
type Kind string

const (
	KindBeginsSoon Kind = "BEGINS_SOON"
	KindBeginsNow  Kind = "BEGINS_NOW"
	KindEndsSoon   Kind = "ENDS_SOON"
	KindEndsNow    Kind = "ENDS_NOW"
)

// Alert is a single notification event and the moment it should fire.
type Alert struct {
	Kind      Kind
	Message   string
	TriggerAt time.Time
}

// Derive expands a period into its four alerts, always in the same order.
// Adjacent periods are not merged: an end and the next begin may share a timestamp.
func Derive(p schedule.MaterializedPeriod) [4]Alert {
	return [4]Alert{
		{Kind: KindBeginsSoon, Message: fmt.Sprintf("%s begins in 5 minutes", p.FriendlyName), TriggerAt: p.Start.Add(-LeadTime)},
		{Kind: KindBeginsNow, Message: fmt.Sprintf("%s begins now!", p.FriendlyName), TriggerAt: p.Start},
		{Kind: KindEndsSoon, Message: fmt.Sprintf("%s ends in 5 minutes", p.FriendlyName), TriggerAt: p.End.Add(-LeadTime)},
		{Kind: KindEndsNow, Message: fmt.Sprintf("%s ends now!", p.FriendlyName), TriggerAt: p.End},
	}
}
