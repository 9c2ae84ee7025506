package jobs

import (
	"database/sql"

	"paylater-backend/internal/config"
	"paylater-backend/internal/logger"
	"paylater-backend/internal/repository/postgres"
	"paylater-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	config   *config.Config
}

// Services holds the service dependencies needed by jobs.
type Services struct {
	Plan         service.PlanService
	Record       service.RecordService
	Notification service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies.
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution).
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.MarkOverduePlans()
	jr.SendDueReminders()
}
