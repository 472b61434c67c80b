// internal/app/generator_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"bell_cron_generator/internal/domain/alert"
	"bell_cron_generator/internal/domain/schedule"
	"bell_cron_generator/internal/domain/trigger"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// GeneratorService turns a schedule into crontab trigger records.
type GeneratorService interface {
	// Generate materializes every day from `now` through DaysIntoFuture-1 days ahead
	// and returns records ordered by day, period, alert, recipient.
	Generate(ctx context.Context, store schedule.Store, now time.Time) ([]trigger.Record, error)
}

// GenerationOptions is the per-run configuration threaded through the pipeline.
type GenerationOptions struct {
	TimezoneOffsetHours float64
	DaysIntoFuture      int
	Recipients          []string
	Workers             int
}

// GeneratorServiceImpl implements GeneratorService.
type GeneratorServiceImpl struct {
	opts   GenerationOptions
	logger *logrus.Entry
}

var _ GeneratorService = (*GeneratorServiceImpl)(nil)

func NewGeneratorService(opts GenerationOptions, logger *logrus.Entry) *GeneratorServiceImpl {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	recipients := make([]string, len(opts.Recipients))
	copy(recipients, opts.Recipients)
	opts.Recipients = recipients
	return &GeneratorServiceImpl{opts: opts, logger: logger}
}

// Generate computes days concurrently and re-sequences them so the output matches a sequential run.
func (s *GeneratorServiceImpl) Generate(ctx context.Context, store schedule.Store, now time.Time) ([]trigger.Record, error) {
	if s.opts.DaysIntoFuture <= 0 {
		s.logger.Info("No days requested; nothing to generate.")
		return nil, nil
	}
	offset := schedule.OffsetFromHours(s.opts.TimezoneOffsetHours)
	s.logger.WithFields(logrus.Fields{
		"days":       s.opts.DaysIntoFuture,
		"offset":     offset.String(),
		"recipients": len(s.opts.Recipients),
	}).Info("Generating events for today through the configured number of days into the future")

	perDay := make([][]trigger.Record, s.opts.DaysIntoFuture)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for n := 0; n < s.opts.DaysIntoFuture; n++ {
		n := n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day := now.AddDate(0, 0, n)
			records, err := s.generateDay(store, day, offset)
			if err != nil {
				return fmt.Errorf("day %s: %w", day.Format("2006-01-02"), err)
			}
			perDay[n] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Errorf("Trigger generation failed: %v", err)
		return nil, err
	}

	total := 0
	for _, records := range perDay {
		total += len(records)
	}
	out := make([]trigger.Record, 0, total)
	for _, records := range perDay {
		out = append(out, records...)
	}
	s.logger.WithField("records", len(out)).Info("Trigger generation complete.")
	return out, nil
}

func (s *GeneratorServiceImpl) generateDay(store schedule.Store, day time.Time, offset time.Duration) ([]trigger.Record, error) {
	tpl := store.OnDate(day)
	if len(tpl.Periods) == 0 {
		s.logger.Debugf("No periods on %s.", day.Format("2006-01-02"))
		return nil, nil
	}

	periods := schedule.Correct(schedule.Materialize(day, tpl), offset)
	dayRef := day.Add(offset)

	records := make([]trigger.Record, 0, len(periods)*4*len(s.opts.Recipients))
	for _, p := range periods {
		if p.End.Before(p.Start) {
			s.logger.Warnf("Period %q on %s ends before it starts.", p.FriendlyName, day.Format("2006-01-02"))
		}
		for _, a := range alert.Derive(p) {
			emitted := trigger.Emit(a, dayRef, s.opts.Recipients)
			// All records of one alert share the same time fields.
			if len(emitted) > 0 {
				if _, err := emitted[0].Schedule(); err != nil {
					return nil, err
				}
			}
			records = append(records, emitted...)
		}
	}
	s.logger.Debugf("Generated %d records for %s (%s).", len(records), day.Format("2006-01-02"), tpl.FriendlyName)
	return records, nil
}
