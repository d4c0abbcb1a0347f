package users

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobassist-backend/internal/shared/telemetry"
)

const bcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// InputError carries a message that is safe to return to the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Sign(userID, email, name string) (string, error)
}

// Session is a signed-in user and their token.
type Session struct {
	User  User
	Token string
}

type Service struct {
	Repo   Repo
	Tokens TokenIssuer
	NewID  func() string
}

func NewService(repo Repo, tokens TokenIssuer) *Service {
	return &Service{Repo: repo, Tokens: tokens, NewID: uuid.NewString}
}

// Signup registers a password account and starts a session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Session{}, &InputError{Message: "All fields are required"}
	}
	if !emailPattern.MatchString(email) {
		return Session{}, &InputError{Message: "Invalid email format"}
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Session{}, err
	}
	user := User{
		ID:           s.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		ProfileImage: DefaultProfileImage,
		Plan:         DefaultPlan,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, err
	}
	telemetry.Info("user.signup", map[string]any{"user_id": user.ID})
	return s.session(user)
}

// Login checks a password and starts a session. Unknown emails and wrong
// passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, &InputError{Message: "Email and password are required"}
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if user.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// SignInExternal upserts a user verified by an identity provider and starts a session.
func (s *Service) SignInExternal(ctx context.Context, email, name string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, &InputError{Message: "email is required"}
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user, err := s.Repo.UpsertByEmail(ctx, User{
		ID:           s.NewID(),
		Name:         name,
		Email:        email,
		ProfileImage: DefaultProfileImage,
		Plan:         DefaultPlan,
	})
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

// SetIndustry records the user's chosen industry.
func (s *Service) SetIndustry(ctx context.Context, userID, industry string) (string, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return "", &InputError{Message: "Industry is required"}
	}
	if err := s.Repo.SetIndustry(ctx, userID, industry); err != nil {
		return "", err
	}
	return industry, nil
}

func (s *Service) session(user User) (Session, error) {
	token, err := s.Tokens.Sign(user.ID, user.Email, user.Name)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}
