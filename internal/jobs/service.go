package jobs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Input is a job as submitted by the caller.
type Input struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	ReminderDate string `json:"reminderDate"`
}

type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now, NewID: uuid.NewString}
}

func (s *Service) build(userID string, in Input) (Job, error) {
	title := strings.TrimSpace(in.Title)
	company := strings.TrimSpace(in.Company)
	if title == "" || company == "" {
		return Job{}, ErrMissingFields
	}
	status, err := ParseStatus(in.Status)
	if err != nil {
		return Job{}, err
	}
	reminder, err := ParseDate(in.ReminderDate)
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:           s.NewID(),
		UserID:       userID,
		Title:        title,
		Company:      company,
		Description:  strings.TrimSpace(in.Description),
		URL:          strings.TrimSpace(in.URL),
		Status:       status,
		ReminderDate: reminder,
		CreatedAt:    s.Now().UTC(),
	}, nil
}

// Add stores one job for userID.
func (s *Service) Add(ctx context.Context, userID string, in Input) (Job, error) {
	job, err := s.build(userID, in)
	if err != nil {
		return Job{}, err
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Import reads title,company,description,url,reminderDate rows after a header
// row. Rows missing a title or company are skipped; an unreadable reminder
// date is dropped rather than failing the row.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var batch []Job
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		in := Input{
			Title:        field(record, 0),
			Company:      field(record, 1),
			Description:  field(record, 2),
			URL:          field(record, 3),
			ReminderDate: field(record, 4),
		}
		if _, err := ParseDate(in.ReminderDate); err != nil {
			in.ReminderDate = ""
		}
		job, err := s.build(userID, in)
		if err != nil {
			continue
		}
		batch = append(batch, job)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.Repo.CreateMany(ctx, batch); err != nil {
		return 0, err
	}
	return len(batch), nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (s *Service) List(ctx context.Context, userID string) ([]Job, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update changes the status and/or reminder date of the caller's job.
func (s *Service) Update(ctx context.Context, userID, jobID string, status, reminderDate *string) (Job, error) {
	var patch Patch
	if status != nil {
		st, err := ParseStatus(*status)
		if err != nil {
			return Job{}, err
		}
		patch.Status = &st
	}
	if reminderDate != nil {
		d, err := ParseDate(*reminderDate)
		if err != nil {
			return Job{}, err
		}
		patch.ReminderDate = d
	}
	return s.Repo.Update(ctx, userID, jobID, patch)
}

func (s *Service) Delete(ctx context.Context, userID, jobID string) error {
	return s.Repo.Delete(ctx, userID, jobID)
}
