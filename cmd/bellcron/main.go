package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bell_cron_generator/internal/app"
	"bell_cron_generator/internal/domain/schedule"
	"bell_cron_generator/internal/infra/config"
	"bell_cron_generator/internal/infra/crontab"
	idb "bell_cron_generator/internal/infra/database"
	"bell_cron_generator/internal/infra/logger"
	"bell_cron_generator/internal/infra/recipients"
	"bell_cron_generator/internal/infra/scheduler"
	"bell_cron_generator/internal/infra/schedulefile"
	"bell_cron_generator/internal/infra/upstream"
	"bell_cron_generator/internal/infra/watcher"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bellcron",
		Short: "Generate crontab lines that post bell schedule alerts to webhooks",
		Long: `bellcron reads a bell schedule and prints one crontab line per alert and webhook:
five minutes before and at the start and end of every period, for today
through the configured number of days into the future.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.Init(cfg)
			return run(cmd.Context(), cfg, logrus.NewEntry(logger.Get()))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.UpstreamURL, "upstream", "u", cfg.UpstreamURL, "URL of the upstream schedule endpoint")
	f.StringVar(&cfg.ScheduleFile, "schedule-file", cfg.ScheduleFile, "read the schedule from a local JSON or YAML file instead of upstream")
	f.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "read the schedule from PostgreSQL instead of upstream")
	f.Float64VarP(&cfg.TimezoneOffset, "timezone-offset", "t", cfg.TimezoneOffset, "time zone offset in hours; only set this if the system time zone does not match the upstream's")
	f.StringArrayVarP(&cfg.WebhookURLs, "webhook-url", "d", cfg.WebhookURLs, "webhook URL (repeatable)")
	f.StringArrayVarP(&cfg.WebhookFiles, "webhook-file", "i", cfg.WebhookFiles, "file containing one webhook URL per line (repeatable)")
	f.IntVarP(&cfg.DaysIntoFuture, "days-into-future", "n", cfg.DaysIntoFuture, "number of days into the future to generate events for")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "days generated concurrently")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "write the crontab to this file instead of stdout")
	f.StringVar(&cfg.RegenerateSpec, "regenerate", cfg.RegenerateSpec, "keep running and regenerate the output on this cron spec")
	f.BoolVar(&cfg.WatchWebhooks, "watch-webhook-files", cfg.WatchWebhooks, "also regenerate when a webhook file changes")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	source, closeSource, err := openSource(ctx, cfg, log)
	if err != nil {
		log.Errorf("Could not open schedule source: %v", err)
		return err
	}
	defer closeSource()

	var writer app.RecordWriter = crontab.NewStreamWriter(os.Stdout)
	if cfg.Output != "" {
		writer = crontab.NewFileWriter(cfg.Output)
	}
	collector := recipients.NewCollector(cfg.WebhookURLs, cfg.WebhookFiles, log)

	runService := app.NewRunService(source, collector, writer, app.RunOptions{
		TimezoneOffsetHours: cfg.TimezoneOffset,
		DaysIntoFuture:      cfg.DaysIntoFuture,
		Workers:             cfg.Workers,
	}, log)

	if cfg.RegenerateSpec == "" {
		_, err := runService.Run(ctx)
		return err
	}
	return runDaemon(ctx, cfg, runService, collector, log)
}

func runDaemon(ctx context.Context, cfg *config.AppConfig, runService *app.RunService, collector *recipients.Collector, log *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	regen := scheduler.NewRegenerationScheduler(runService, log, cfg.RegenerateSpec)
	regen.RunNow("startup")
	if err := regen.Start(); err != nil {
		log.Errorf("Could not add regeneration cron job: %v", err)
		return err
	}

	if cfg.WatchWebhooks && len(collector.Files()) > 0 {
		fw, err := watcher.New(collector.Files(), watcher.DefaultDebounce, func() { regen.RunNow("webhook file changed") }, log)
		if err != nil {
			regen.Stop()
			return err
		}
		go func() {
			if err := fw.Run(ctx); err != nil {
				log.Errorf("Webhook file watcher stopped: %v", err)
			}
		}()
		log.Info("Watching webhook files for changes.")
	}

	<-ctx.Done() // Block until a signal is received
	log.Info("Shutting down application...")
	regen.Stop()
	log.Info("Application shut down gracefully.")
	return nil
}

func openSource(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (schedule.Source, func(), error) {
	switch {
	case cfg.ScheduleFile != "":
		log.Infof("Reading schedule from file %s.", cfg.ScheduleFile)
		return schedulefile.NewLoader(cfg.ScheduleFile), func() {}, nil
	case cfg.DatabaseURL != "":
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Database connection established successfully.")
		return idb.NewPostgresScheduleRepository(db), func() { closeDB(db, log) }, nil
	default:
		log.Infof("Fetching schedule from %s.", cfg.UpstreamURL)
		return upstream.NewClient(cfg.UpstreamURL, nil), func() {}, nil
	}
}

func closeDB(db *sql.DB, log *logrus.Entry) {
	if err := db.Close(); err != nil {
		log.Warnf("Error closing database: %v", err)
	}
}
