package jobs

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, job Job) error
	CreateMany(ctx context.Context, jobs []Job) error
	ListByUser(ctx context.Context, userID string) ([]Job, error)
	Update(ctx context.Context, userID, jobID string, patch Patch) (Job, error)
	Delete(ctx context.Context, userID, jobID string) error
	// DueReminders returns remindable jobs whose reminder date is in [from, to].
	DueReminders(ctx context.Context, from, to time.Time) ([]DueReminder, error)
}
