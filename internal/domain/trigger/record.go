// internal/domain/trigger/record.go
package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bell_cron_generator/internal/domain/alert"

	"github.com/robfig/cron/v3"
)

// Record is one alert bound to one recipient, in crontab terms.
type Record struct {
	Minute     int
	Hour       int
	DayOfMonth int
	Month      int
	Weekday    int // 0 = Sunday

	Kind      alert.Kind
	Message   string
	Recipient string
	TriggerAt time.Time
}

// Emit produces one record per recipient, in recipient order. Date fields come from
// dayRef, not from the alert's own timestamp.
func Emit(a alert.Alert, dayRef time.Time, recipients []string) []Record {
	records := make([]Record, 0, len(recipients))
	for _, r := range recipients {
		records = append(records, Record{
			Minute:     a.TriggerAt.Minute(),
			Hour:       a.TriggerAt.Hour(),
			DayOfMonth: dayRef.Day(),
			Month:      int(dayRef.Month()),
			Weekday:    int(dayRef.Weekday()),
			Kind:       a.Kind,
			Message:    a.Message,
			Recipient:  r,
			TriggerAt:  a.TriggerAt,
		})
	}
	return records
}

// Spec returns the five cron time fields.
func (r Record) Spec() string {
	return fmt.Sprintf("%d %d %d %d %d", r.Minute, r.Hour, r.DayOfMonth, r.Month, r.Weekday)
}

// Command returns the shell command that delivers the alert to the recipient.
func (r Record) Command() string {
	return fmt.Sprintf(
		`curl -i -H "Accept: application/json" -H "Content-Type: application/json" -X POST --data "{\"content\": \"%s\"}" %s`,
		EscapeMessage(r.Message),
		r.Recipient,
	)
}

// Line renders the record as a crontab line.
func (r Record) Line() string {
	return r.Spec() + " " + r.Command()
}

// Schedule parses the record's time fields with the standard five-field cron parser.
func (r Record) Schedule() (cron.Schedule, error) {
	sched, err := cron.ParseStandard(r.Spec())
	if err != nil {
		return nil, fmt.Errorf("invalid cron fields %q: %w", r.Spec(), err)
	}
	return sched, nil
}

// Next returns the first time after `after` at which cron would run the record.
func (r Record) Next(after time.Time) (time.Time, error) {
	sched, err := r.Schedule()
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}

var shellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
)

// EscapeMessage makes msg safe to embed in the JSON string of the curl payload,
// which itself sits inside a double-quoted shell word in a crontab command.
func EscapeMessage(msg string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(msg)
	quoted := strings.TrimSuffix(buf.String(), "\n")
	jsonEscaped := quoted[1 : len(quoted)-1]

	// cron turns an unescaped % in the command into a newline.
	return strings.ReplaceAll(shellEscaper.Replace(jsonEscaped), "%", `\%`)
}
