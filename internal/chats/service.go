package chats

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobassist-backend/internal/llm"
)

var (
	ErrEmptyHistory = errors.New("history must be a non-empty array")
	errBlankReply   = errors.New("blank reply")
)

// Completer asks a ranked list of models for a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, accept func(reply string) error) (string, error)
}

type Service struct {
	LLM  Completer
	Repo Repo
	Now  func() time.Time
}

func NewService(completer Completer, repo Repo) *Service {
	return &Service{LLM: completer, Repo: repo, Now: time.Now}
}

// Reply continues the conversation and returns the mentor's trimmed answer.
func (s *Service) Reply(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}
	reply, err := s.LLM.Complete(ctx, llm.ChatPrompt(turns), func(reply string) error {
		if strings.TrimSpace(reply) == "" {
			return errBlankReply
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Save replaces the stored conversation. Messages without a timestamp get the current time.
func (s *Service) Save(ctx context.Context, userID string, history []Message) error {
	now := s.Now().UTC()
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		out = append(out, m)
	}
	return s.Repo.Save(ctx, userID, out)
}

func (s *Service) History(ctx context.Context, userID string) ([]Message, error) {
	return s.Repo.Get(ctx, userID)
}
