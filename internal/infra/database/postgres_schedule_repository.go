// internal/infra/database/postgres_schedule_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bell_cron_generator/internal/domain/schedule"

	"github.com/lib/pq"
)

// Custom errors
var ErrNoScheduleTypes = fmt.Errorf("no schedule types stored")
var ErrScheduleTablesMissing = fmt.Errorf("schedule tables do not exist")

const undefinedTableCode = "42P01"

// PostgresScheduleRepository reads a schedule definition from three tables:
//
//	schedule_types    (name TEXT PRIMARY KEY, friendly_name TEXT)
//	schedule_periods  (schedule_type TEXT, position INT, friendly_name TEXT,
//	                   start_time_of_day TIME, end_time_of_day TIME)
//	schedule_calendar (position INT, rule_date DATE, range_from DATE, range_to DATE,
//	                   weekday TEXT, schedule_type TEXT)
type PostgresScheduleRepository struct {
	db *sql.DB
}

var _ schedule.Source = (*PostgresScheduleRepository)(nil)

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

type typeRow struct {
	name         string
	friendlyName string
}

type periodRow struct {
	scheduleType string
	friendlyName string
	start        string
	end          string
}

type ruleRow struct {
	date         sql.NullString
	from         sql.NullString
	to           sql.NullString
	weekday      sql.NullString
	scheduleType string
}

func (r *PostgresScheduleRepository) LoadDefinition(ctx context.Context) (schedule.Definition, error) {
	types, err := r.listTypes(ctx)
	if err != nil {
		return schedule.Definition{}, err
	}
	periods, err := r.listPeriods(ctx)
	if err != nil {
		return schedule.Definition{}, err
	}
	rules, err := r.listRules(ctx)
	if err != nil {
		return schedule.Definition{}, err
	}
	return buildDefinition(types, periods, rules)
}

func (r *PostgresScheduleRepository) listTypes(ctx context.Context) ([]typeRow, error) {
	query := `SELECT name, COALESCE(friendly_name, name) FROM schedule_types ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryError("error listing schedule types", err)
	}
	defer rows.Close()

	var out []typeRow
	for rows.Next() {
		var t typeRow
		if err := rows.Scan(&t.name, &t.friendlyName); err != nil {
			return nil, fmt.Errorf("error scanning schedule type row: %w", err)
		}
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule type rows: %w", err)
	}
	return out, nil
}

func (r *PostgresScheduleRepository) listPeriods(ctx context.Context) ([]periodRow, error) {
	query := `SELECT schedule_type, friendly_name,
                     to_char(start_time_of_day, 'HH24:MI:SS'), to_char(end_time_of_day, 'HH24:MI:SS')
               FROM schedule_periods ORDER BY schedule_type, position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryError("error listing schedule periods", err)
	}
	defer rows.Close()

	var out []periodRow
	for rows.Next() {
		var p periodRow
		if err := rows.Scan(&p.scheduleType, &p.friendlyName, &p.start, &p.end); err != nil {
			return nil, fmt.Errorf("error scanning schedule period row: %w", err)
		}
		out = append(out, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule period rows: %w", err)
	}
	return out, nil
}

func (r *PostgresScheduleRepository) listRules(ctx context.Context) ([]ruleRow, error) {
	query := `SELECT to_char(rule_date, 'YYYY-MM-DD'), to_char(range_from, 'YYYY-MM-DD'),
                     to_char(range_to, 'YYYY-MM-DD'), weekday, schedule_type
               FROM schedule_calendar ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryError("error listing schedule calendar", err)
	}
	defer rows.Close()

	var out []ruleRow
	for rows.Next() {
		var rr ruleRow
		if err := rows.Scan(&rr.date, &rr.from, &rr.to, &rr.weekday, &rr.scheduleType); err != nil {
			return nil, fmt.Errorf("error scanning schedule calendar row: %w", err)
		}
		out = append(out, rr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule calendar rows: %w", err)
	}
	return out, nil
}

func wrapQueryError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == undefinedTableCode {
		return fmt.Errorf("%s: %w: %s", msg, ErrScheduleTablesMissing, pqErr.Message)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// buildDefinition assembles rows into the wire document. Period rows must be ordered by position.
func buildDefinition(types []typeRow, periods []periodRow, rules []ruleRow) (schedule.Definition, error) {
	if len(types) == 0 {
		return schedule.Definition{}, ErrNoScheduleTypes
	}
	def := schedule.Definition{ScheduleTypes: make(map[string]schedule.DailyTemplate, len(types))}
	for _, t := range types {
		def.ScheduleTypes[t.name] = schedule.DailyTemplate{FriendlyName: t.friendlyName, Periods: []schedule.PeriodTemplate{}}
	}

	for _, p := range periods {
		tpl, ok := def.ScheduleTypes[p.scheduleType]
		if !ok {
			return schedule.Definition{}, fmt.Errorf("period %q references unknown schedule type %q", p.friendlyName, p.scheduleType)
		}
		start, err := schedule.ParseTimeOfDay(p.start)
		if err != nil {
			return schedule.Definition{}, fmt.Errorf("period %q: %w", p.friendlyName, err)
		}
		end, err := schedule.ParseTimeOfDay(p.end)
		if err != nil {
			return schedule.Definition{}, fmt.Errorf("period %q: %w", p.friendlyName, err)
		}
		tpl.Periods = append(tpl.Periods, schedule.PeriodTemplate{FriendlyName: p.friendlyName, Start: start, End: end})
		def.ScheduleTypes[p.scheduleType] = tpl
	}

	for _, rr := range rules {
		def.Calendar = append(def.Calendar, schedule.CalendarRule{
			Date:     rr.date.String,
			From:     rr.from.String,
			To:       rr.to.String,
			Weekday:  rr.weekday.String,
			Schedule: rr.scheduleType,
		})
	}
	return def, nil
}
