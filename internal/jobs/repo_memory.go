package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// ContactLookup resolves a user's name and email.
type ContactLookup func(ctx context.Context, userID string) (name, email string, ok bool)

type MemoryRepo struct {
	mu       sync.RWMutex
	jobs     map[string]Job
	contacts ContactLookup
}

func NewMemoryRepo(contacts ContactLookup) *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job), contacts: contacts}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	return r.CreateMany(ctx, []Job{job})
}

func (r *MemoryRepo) CreateMany(ctx context.Context, jobs []Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Job{}
	for _, j := range r.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, jobID string, patch Patch) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok || j.UserID != userID {
		return Job{}, ErrNotFound
	}
	if patch.Status != nil {
		j.Status = *patch.Status
	}
	if patch.ReminderDate != nil {
		d := *patch.ReminderDate
		j.ReminderDate = &d
	}
	r.jobs[jobID] = j
	return j, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok || j.UserID != userID {
		return ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

func (r *MemoryRepo) DueReminders(ctx context.Context, from, to time.Time) ([]DueReminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var due []Job
	for _, j := range r.jobs {
		if j.ReminderDate == nil || !j.Status.Remindable() {
			continue
		}
		if j.ReminderDate.Before(from) || j.ReminderDate.After(to) {
			continue
		}
		due = append(due, j)
	}
	r.mu.RUnlock()
	sort.Slice(due, func(i, k int) bool { return due[i].ReminderDate.Before(*due[k].ReminderDate) })

	out := make([]DueReminder, 0, len(due))
	for _, j := range due {
		if r.contacts == nil {
			continue
		}
		name, email, ok := r.contacts(ctx, j.UserID)
		if !ok {
			continue
		}
		out = append(out, DueReminder{Job: j, UserName: name, UserEmail: email})
	}
	return out, nil
}
