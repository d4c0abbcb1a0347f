package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobassist-backend/internal/shared/telemetry"
)

const runTimeout = 5 * time.Minute

// Scheduler runs the reminder job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	job  *Job
}

func NewScheduler(job *Job) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		job:  job,
	}
}

// Start registers the job under spec and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	s.cron.Start()
	telemetry.Info("reminder.scheduler.started", map[string]any{"schedule": spec})
	return nil
}

// Stop stops scheduling and waits for a running job or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		telemetry.Error("reminder.run_failed", map[string]any{"error": err.Error()})
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	telemetry.Info("cron."+msg, pairs(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := pairs(keysAndValues)
	fields["error"] = err.Error()
	telemetry.Error("cron."+msg, fields)
}

func pairs(kv []interface{}) map[string]any {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
