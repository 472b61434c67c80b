// internal/app/run_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"bell_cron_generator/internal/domain/schedule"
	"bell_cron_generator/internal/domain/trigger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecipientProvider supplies the ordered webhook list for a run.
type RecipientProvider interface {
	Recipients() []string
}

// RecordWriter receives the records of a completed run.
type RecordWriter interface {
	WriteRecords(records []trigger.Record) error
}

// RunOptions carries the generation settings that do not depend on the recipient list.
type RunOptions struct {
	TimezoneOffsetHours float64
	DaysIntoFuture      int
	Workers             int
}

// RunService performs one full pass: load schedule, collect recipients, generate, write.
// Nothing is carried over between passes.
type RunService struct {
	source     schedule.Source
	recipients RecipientProvider
	writer     RecordWriter
	opts       RunOptions
	logger     *logrus.Entry
	now        func() time.Time
}

func NewRunService(
	source schedule.Source,
	recipients RecipientProvider,
	writer RecordWriter,
	opts RunOptions,
	logger *logrus.Entry,
) *RunService {
	return &RunService{
		source:     source,
		recipients: recipients,
		writer:     writer,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes a single pass and returns the number of records written.
func (s *RunService) Run(ctx context.Context) (int, error) {
	log := s.logger.WithField("run_id", uuid.NewString())

	def, err := s.source.LoadDefinition(ctx)
	if err != nil {
		log.Errorf("Failed to load schedule: %v", err)
		return 0, fmt.Errorf("failed to load schedule: %w", err)
	}
	store, err := schedule.New(def)
	if err != nil {
		log.Errorf("Failed to compile schedule: %v", err)
		return 0, fmt.Errorf("failed to compile schedule: %w", err)
	}
	log.WithField("schedule_types", len(def.ScheduleTypes)).Info("Got schedule from upstream.")

	urls := s.recipients.Recipients()
	if len(urls) == 0 {
		log.Warn("No webhook URLs configured; output will be empty.")
	}

	gen := NewGeneratorService(GenerationOptions{
		TimezoneOffsetHours: s.opts.TimezoneOffsetHours,
		DaysIntoFuture:      s.opts.DaysIntoFuture,
		Recipients:          urls,
		Workers:             s.opts.Workers,
	}, log)

	records, err := gen.Generate(ctx, store, s.now())
	if err != nil {
		return 0, err
	}
	if err := s.writer.WriteRecords(records); err != nil {
		log.Errorf("Failed to write crontab: %v", err)
		return 0, fmt.Errorf("failed to write crontab: %w", err)
	}
	return len(records), nil
}
