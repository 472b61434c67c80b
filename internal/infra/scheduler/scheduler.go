package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultRunTimeout = 5 * time.Minute

// Runner is one regeneration pass.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

// RegenerationScheduler re-runs the generator on a cron spec and on demand.
// Passes never overlap.
type RegenerationScheduler struct {
	cronEngine *cron.Cron
	runner     Runner
	logger     *logrus.Entry
	spec       string
	runTimeout time.Duration

	mu sync.Mutex
}

func NewRegenerationScheduler(runner Runner, logger *logrus.Entry, spec string) *RegenerationScheduler {
	return &RegenerationScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		runner:     runner,
		logger:     logger,
		spec:       spec,
		runTimeout: defaultRunTimeout,
	}
}

// Start registers the job and starts the cron engine.
func (s *RegenerationScheduler) Start() error {
	s.logger.Info("Starting regeneration scheduler...")

	_, err := s.cronEngine.AddFunc(s.spec, func() {
		s.logger.Info("Cron job triggered for crontab regeneration.")
		s.RunNow("cron")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.spec).Info("Regeneration scheduler started.")
	return nil
}

// RunNow performs one pass, waiting for any pass already in progress.
// Failures are logged; the previous output is left as it was.
func (s *RegenerationScheduler) RunNow(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	n, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.WithField("reason", reason).Errorf("Error during crontab regeneration: %v", err)
		return
	}
	s.logger.WithFields(logrus.Fields{"reason": reason, "records": n}).Info("Crontab regenerated.")
}

func (s *RegenerationScheduler) Stop() {
	s.logger.Info("Stopping regeneration scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Regeneration scheduler gracefully stopped.")
}
