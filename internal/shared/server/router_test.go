package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/chats"
	"jobassist-backend/internal/services/health"
	"jobassist-backend/internal/shared/auth"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/users"
)

type cannedCompleter struct{}

func (cannedCompleter) Complete(_ context.Context, _ string, accept func(string) error) (string, error) {
	reply := "Tailor the summary to the role."
	if accept != nil {
		if err := accept(reply); err != nil {
			return "", err
		}
	}
	return reply, nil
}

func newTestRouter(t *testing.T, aiPerMinute int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("router-test-secret", time.Hour, false)
	require.NoError(t, err)

	userSvc := users.NewService(users.NewMemoryRepo(), signer)
	chatSvc := chats.NewService(cannedCompleter{}, chats.NewMemoryRepo())

	return NewRouter(RouterDeps{
		Config:      config.Config{Env: "dev", AIRatePerMinute: aiPerMinute},
		Verifier:    signer,
		Health:      health.NewService(nil),
		UserHandler: users.NewHandler(userSvc),
		ChatHandler: chats.NewHandler(chatSvc),
	})
}

func serve(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func signup(t *testing.T, router *gin.Engine) string {
	t.Helper()
	resp := serve(router, http.MethodPost, "/api/v1/auth/signup",
		`{"name":"Ada","email":"ada@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHealthReportsMemoryBackend(t *testing.T) {
	router := newTestRouter(t, 10)
	resp := serve(router, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","database":"memory"}`, resp.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 10)
	resp := serve(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "resume_pipeline_started_total")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	router := newTestRouter(t, 10)

	resp := serve(router, http.MethodGet, "/api/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = serve(router, http.MethodGet, "/api/v1/me", "", "not-a-token")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	token := signup(t, router)
	resp = serve(router, http.MethodGet, "/api/v1/me", "", token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "ada@example.com")
}

func TestChatIsRateLimitedPerUser(t *testing.T) {
	router := newTestRouter(t, 1)
	token := signup(t, router)
	body := `{"history":[{"role":"user","content":"How do I improve my resume?"}]}`

	resp := serve(router, http.MethodPost, "/api/v1/chat", body, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = serve(router, http.MethodPost, "/api/v1/chat", body, token)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	resp = serve(router, http.MethodGet, "/api/v1/chat/history", "", token)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}
