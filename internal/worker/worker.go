// Package worker runs scheduled maintenance jobs for the API's data.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/service"
)

const streakJob = "streak_reconciliation"

// jobTimeout bounds a single reconciliation run
const jobTimeout = 10 * time.Minute

// Scheduler runs the nightly streak reconciliation on a cron schedule
type Scheduler struct {
	cron        *cron.Cron
	schedule    string
	maintenance service.StreakMaintenance
	log         logger.Logger
}

// New creates a scheduler. schedule is a six-field cron expression
// (seconds first) evaluated in loc.
func New(maintenance service.StreakMaintenance, schedule string, loc *time.Location, log logger.Logger) *Scheduler {
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		schedule:    schedule,
		maintenance: maintenance,
		log:         log,
	}
}

// Run schedules the job and blocks until ctx is cancelled, then waits for a
// running job to finish
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.ReconcileStreaks(ctx); err != nil {
			s.log.Error("scheduled job failed", logger.String("job", streakJob), logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s (%q): %w", streakJob, s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("worker started", logger.String("job", streakJob), logger.String("schedule", s.schedule))

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.log.Info("worker stopped")
	return nil
}

// ReconcileStreaks runs one reconciliation pass immediately
func (s *Scheduler) ReconcileStreaks(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	ctx = logger.WithLogger(ctx, s.log)
	ctx = logger.ContextWithFields(ctx, logger.String("job", streakJob))
	log := logger.Ctx(ctx)

	start := time.Now()
	reset, err := s.maintenance.ReconcileAll(ctx)
	log.Info("streak reconciliation finished",
		logger.Int("reset", reset),
		logger.Duration("duration", time.Since(start)),
		logger.Bool("ok", err == nil),
	)
	return err
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Err(err))...)
}

func kvFields(keysAndValues []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields = append(fields, logger.Any(key, keysAndValues[i+1]))
	}
	return fields
}
