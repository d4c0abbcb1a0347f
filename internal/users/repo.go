package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// UpsertByEmail creates the user or refreshes the name of an existing one
	// and returns the stored row.
	UpsertByEmail(ctx context.Context, user User) (User, error)
	SetIndustry(ctx context.Context, userID, industry string) error
}
