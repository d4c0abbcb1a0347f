// Package coverletters stores cover letters drafted by users.
package coverletters

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
)

const recentLimit = 10

var ErrContentRequired = errors.New("content is required")

type Letter struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Content   string    `json:"content"`
	JobTitle  string    `json:"jobTitle"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo interface {
	Create(ctx context.Context, letter Letter) error
	Recent(ctx context.Context, userID string, limit int) ([]Letter, error)
}

type MemoryRepo struct {
	mu      sync.RWMutex
	letters []Letter
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(ctx context.Context, letter Letter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.letters = append(r.letters, letter)
	return nil
}

func (r *MemoryRepo) Recent(ctx context.Context, userID string, limit int) ([]Letter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Letter{}
	for _, l := range r.letters {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, l Letter) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO cover_letters (id, user_id, content, job_title, company, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.UserID, l.Content, l.JobTitle, l.Company, l.CreatedAt)
	return err
}

func (r *PGRepo) Recent(ctx context.Context, userID string, limit int) ([]Letter, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, content, job_title, company, created_at
		FROM cover_letters
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Letter{}
	for rows.Next() {
		var l Letter
		if err := rows.Scan(&l.ID, &l.UserID, &l.Content, &l.JobTitle, &l.Company, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type Service struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now, NewID: uuid.NewString}
}

func (s *Service) Save(ctx context.Context, userID, content, jobTitle, company string) (Letter, error) {
	if strings.TrimSpace(content) == "" {
		return Letter{}, ErrContentRequired
	}
	l := Letter{
		ID:        s.NewID(),
		UserID:    userID,
		Content:   content,
		JobTitle:  strings.TrimSpace(jobTitle),
		Company:   strings.TrimSpace(company),
		CreatedAt: s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return Letter{}, err
	}
	return l, nil
}

func (s *Service) Recent(ctx context.Context, userID string) ([]Letter, error) {
	return s.Repo.Recent(ctx, userID, recentLimit)
}

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cover-letters", h.save)
	rg.GET("/cover-letters", h.list)
}

func (h *Handler) save(c *gin.Context) {
	var req struct {
		Content  string `json:"content"`
		JobTitle string `json:"jobTitle"`
		Company  string `json:"company"`
	}
	_ = c.ShouldBindJSON(&req)

	l, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), req.Content, req.JobTitle, req.Company)
	if err != nil {
		if errors.Is(err, ErrContentRequired) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Cover letter content is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to save cover letter", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"message": "Cover letter saved successfully", "id": l.ID})
}

func (h *Handler) list(c *gin.Context) {
	letters, err := h.Svc.Recent(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch cover letters", nil)
		return
	}
	respond.JSON(c, http.StatusOK, letters)
}
