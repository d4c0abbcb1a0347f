package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const insertJob = `
INSERT INTO jobs (id, user_id, title, company, description, url, status, reminder_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const jobColumns = `id, user_id, title, company, description, url, status, reminder_date, created_at`

func insertArgs(j Job) []any {
	return []any{j.ID, j.UserID, j.Title, j.Company, j.Description, j.URL, string(j.Status), nullableTime(j.ReminderDate), j.CreatedAt}
}

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	_, err := r.DB.ExecContext(ctx, insertJob, insertArgs(job)...)
	return err
}

// CreateMany inserts all jobs in one transaction.
func (r *PGRepo) CreateMany(ctx context.Context, jobs []Job) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, j := range jobs {
		if _, err := tx.ExecContext(ctx, insertJob, insertArgs(j)...); err != nil {
			return fmt.Errorf("insert job %q: %w", j.Title, err)
		}
	}
	return tx.Commit()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, userID, jobID string, patch Patch) (Job, error) {
	var status any
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	row := r.DB.QueryRowContext(ctx, `
UPDATE jobs SET
  status = COALESCE($3, status),
  reminder_date = COALESCE($4, reminder_date)
WHERE id = $1 AND user_id = $2
RETURNING `+jobColumns, jobID, userID, status, nullableTime(patch.ReminderDate))

	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (r *PGRepo) Delete(ctx context.Context, userID, jobID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, jobID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DueReminders(ctx context.Context, from, to time.Time) ([]DueReminder, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT j.id, j.user_id, j.title, j.company, j.description, j.url, j.status, j.reminder_date, j.created_at,
       u.name, u.email
FROM jobs j
JOIN users u ON u.id::text = j.user_id
WHERE j.reminder_date BETWEEN $1 AND $2
  AND j.status IN ($3, $4)
ORDER BY j.reminder_date`, from, to, string(StatusApplied), string(StatusInterview))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueReminder
	for rows.Next() {
		var d DueReminder
		var reminder sql.NullTime
		var status string
		if err := rows.Scan(
			&d.Job.ID, &d.Job.UserID, &d.Job.Title, &d.Job.Company, &d.Job.Description, &d.Job.URL,
			&status, &reminder, &d.Job.CreatedAt, &d.UserName, &d.UserEmail,
		); err != nil {
			return nil, err
		}
		d.Job.Status = Status(status)
		if reminder.Valid {
			t := reminder.Time
			d.Job.ReminderDate = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (Job, error) {
	var j Job
	var status string
	var reminder sql.NullTime
	if err := s.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Description, &j.URL, &status, &reminder, &j.CreatedAt); err != nil {
		return Job{}, err
	}
	j.Status = Status(status)
	if reminder.Valid {
		t := reminder.Time
		j.ReminderDate = &t
	}
	return j, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
