package chats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/llm"
)

type echoGen struct {
	reply   string
	err     error
	prompts []string
}

func (g *echoGen) Generate(_ context.Context, _, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func newChatRouter(t *testing.T, gen llm.Generator) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(&llm.Ranked{Models: []llm.ModelRef{{Name: "m", Gen: gen}}}, NewMemoryRepo())
	svc.Now = func() time.Time { return time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC) }

	router := gin.New()
	rg := router.Group("/api/v1")
	rg.Use(func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(rg)
	return router, svc
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestReplyBuildsTranscriptAndTrims(t *testing.T) {
	gen := &echoGen{reply: "  Practice system design.  \n"}
	router, _ := newChatRouter(t, gen)

	resp := post(router, "/api/v1/chat", `{"history":[{"role":"user","content":"How do I prepare?"},{"role":"assistant","content":"For what?"},{"role":"user","content":"Interviews"}]}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"response":"Practice system design."}`, resp.Body.String())

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "User: How do I prepare?\nAI: For what?\nUser: Interviews")
}

func TestReplyRejectsEmptyHistory(t *testing.T) {
	router, _ := newChatRouter(t, &echoGen{reply: "x"})
	for _, body := range []string{`{}`, `{"history":[]}`, `{"history":"hi"}`} {
		resp := post(router, "/api/v1/chat", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
	}
}

func TestReplyFailureIsGeneric(t *testing.T) {
	router, _ := newChatRouter(t, &echoGen{err: errors.New("upstream exploded")})
	resp := post(router, "/api/v1/chat", `{"history":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "Failed to process chat request")
	assert.NotContains(t, resp.Body.String(), "exploded")
}

func TestSaveAndHistory(t *testing.T) {
	router, _ := newChatRouter(t, &echoGen{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"history":[]}`, resp.Body.String())

	resp = post(router, "/api/v1/chat/save", `{"history":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil))
	var body struct {
		History []Message `json:"history"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.History, 1)
	assert.Equal(t, "hi", body.History[0].Content)
	assert.Equal(t, 2025, body.History[0].Timestamp.Year())
}

func TestPGRepoSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO chats (.+) ON CONFLICT \\(user_id\\)").
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Save(context.Background(), "u1", []Message{{Role: "user", Content: "hi"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMissingIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT history FROM chats").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"history"}))

	repo := &PGRepo{DB: db}
	got, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty history, got %#v", got)
	}
}
