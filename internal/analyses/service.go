package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service persists and lists analyses.
type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

// NewService constructs a Service backed by repo.
func NewService(repo Repo) *Service {
	return &Service{
		Repo:  repo,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Persist validates and stores one analysis for userID, returning the stored result.
func (s *Service) Persist(ctx context.Context, userID, jobDescription string, result Result) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, &PersistenceError{Err: fmt.Errorf("%w: user id is required", ErrInvalidRecord)}
	}
	if strings.TrimSpace(jobDescription) == "" {
		return Record{}, &PersistenceError{Err: fmt.Errorf("%w: job description is required", ErrInvalidRecord)}
	}
	if !inRange(result.MatchScore) || !inRange(result.KeywordMatchScore) {
		return Record{}, &PersistenceError{Err: fmt.Errorf("%w: score out of range", ErrInvalidRecord)}
	}

	rec := Record{
		ID:             s.NewID(),
		UserID:         userID,
		JobDescription: jobDescription,
		Analysis:       result,
		CreatedAt:      s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Record{}, &PersistenceError{Err: err}
	}
	return rec, nil
}

// List returns a page of the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns one analysis owned by userID.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Record, error) {
	return s.Repo.GetByID(ctx, userID, analysisID)
}

func inRange(score int) bool {
	return score >= 0 && score <= 100
}
