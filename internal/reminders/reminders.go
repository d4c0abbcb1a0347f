// Package reminders emails users about job applications that need a follow-up.
package reminders

import (
	"context"
	"fmt"
	"html"
	"time"

	"jobassist-backend/internal/jobs"
	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/telemetry"
)

const defaultWindow = 24 * time.Hour

// Source lists jobs whose reminder falls in a window.
type Source interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]jobs.DueReminder, error)
}

// Summary is the outcome of one batch.
type Summary struct {
	Due    int
	Sent   int
	Failed int
}

// Job sends one email per due reminder. A failed send does not stop the batch.
type Job struct {
	Source Source
	Mailer Mailer
	Now    func() time.Time
	Window time.Duration
}

func NewJob(source Source, mailer Mailer) *Job {
	return &Job{Source: source, Mailer: mailer, Now: time.Now, Window: defaultWindow}
}

// Run sends the reminders due between now and now+Window.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	now := j.Now().UTC()
	due, err := j.Source.DueReminders(ctx, now, now.Add(j.Window))
	if err != nil {
		return Summary{}, fmt.Errorf("load due reminders: %w", err)
	}

	sum := Summary{Due: len(due)}
	for _, d := range due {
		if err := j.Mailer.Send(ctx, compose(d)); err != nil {
			sum.Failed++
			metrics.IncReminderFailed()
			telemetry.Error("reminder.send_failed", map[string]any{
				"job_id":  d.Job.ID,
				"user_id": d.Job.UserID,
				"error":   err.Error(),
			})
			continue
		}
		sum.Sent++
		metrics.IncReminderSent()
	}
	telemetry.Info("reminder.batch", map[string]any{"due": sum.Due, "sent": sum.Sent, "failed": sum.Failed})
	return sum, nil
}

func compose(d jobs.DueReminder) Message {
	title := html.EscapeString(d.Job.Title)
	company := html.EscapeString(d.Job.Company)
	when := ""
	if d.Job.ReminderDate != nil {
		when = d.Job.ReminderDate.Format("Mon, 02 Jan 2006 15:04 MST")
	}
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>This is a reminder to follow up on your application for <strong>%s</strong> at <strong>%s</strong>.</p>
<p>Status: %s<br>Reminder: %s</p>`,
		html.EscapeString(d.UserName), title, company, html.EscapeString(string(d.Job.Status)), when)
	if d.Job.URL != "" {
		body += fmt.Sprintf("\n<p><a href=\"%s\">View the posting</a></p>", html.EscapeString(d.Job.URL))
	}
	return Message{
		To:      d.UserEmail,
		Subject: fmt.Sprintf("Reminder: Follow up on %s at %s", d.Job.Title, d.Job.Company),
		HTML:    body,
	}
}
