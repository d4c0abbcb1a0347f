package jobs

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview Scheduled"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrMissingFields = errors.New("title and company are required")
	ErrInvalidDate   = errors.New("invalid reminder date")
	ErrNotCSV        = errors.New("only CSV files are allowed")
)

// ParseStatus accepts one of the tracker statuses. Empty means Applied.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case "":
		return StatusApplied, nil
	case StatusApplied:
		return StatusApplied, nil
	case StatusInterview:
		return StatusInterview, nil
	case StatusOffer:
		return StatusOffer, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Remindable reports whether a job in this status still needs a follow-up.
func (s Status) Remindable() bool {
	return s == StatusApplied || s == StatusInterview
}

type Job struct {
	ID           string     `json:"id"`
	UserID       string     `json:"-"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Description  string     `json:"description"`
	URL          string     `json:"url"`
	Status       Status     `json:"status"`
	ReminderDate *time.Time `json:"reminderDate"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Patch lists the fields an update may change. Nil fields are left alone.
type Patch struct {
	Status       *Status
	ReminderDate *time.Time
}

// DueReminder is a job needing a follow-up together with its owner's contact.
type DueReminder struct {
	Job       Job
	UserName  string
	UserEmail string
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate reads a reminder date. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDate
}
