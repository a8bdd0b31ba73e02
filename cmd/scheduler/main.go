package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/jobs"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting rental scheduler")

	if cfg.UsesMemoryStore() {
		logger.Error("the scheduler needs the postgres backend; the in-memory store is private to the server process")
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	reminder := jobs.NewOverdueReminder(
		repository.NewAgreementRepository(db),
		repository.NewChatRepository(db),
		domain.LatePenalty{Amount: cfg.GetLatePenalty(), Currency: cfg.Business.Currency},
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))

	if err := setupCronJobs(c, cfg, reminder); err != nil {
		logger.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	logger.Info("scheduler started", "reminder_spec", cfg.Scheduler.ReminderSpec, "timezone", cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, reminder *jobs.OverdueReminder) error {
	// Daily reminder into the chat of every overdue rental
	_, err := c.AddFunc(cfg.Scheduler.ReminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := reminder.Run(ctx); err != nil {
			logger.Error("overdue reminder job failed", "error", err)
		}
	})
	return err
}
