package chats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Repo stores one conversation per user.
type Repo interface {
	Get(ctx context.Context, userID string) ([]Message, error)
	Save(ctx context.Context, userID string, history []Message) error
}

// MemoryRepo keeps conversations in memory.
type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string][]Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string][]Message)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Message{}, r.byUser[userID]...), nil
}

func (r *MemoryRepo) Save(ctx context.Context, userID string, history []Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = append([]Message(nil), history...)
	return nil
}

// PGRepo stores conversations in the chats table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, userID string) ([]Message, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `SELECT history FROM chats WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []Message{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return out, nil
}

func (r *PGRepo) Save(ctx context.Context, userID string, history []Message) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO chats (user_id, history, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET history = EXCLUDED.history, updated_at = now()
	`, userID, raw)
	return err
}
