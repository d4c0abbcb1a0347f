package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/llm"
	"jobassist-backend/internal/reminders"
	"jobassist-backend/internal/shared/config"
)

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, model, _ string) (string, error) {
	return "answer from " + model, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []reminders.Message
}

func (m *recordingMailer) Send(_ context.Context, msg reminders.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Env:             "dev",
		JWTSecret:       "bootstrap-test-secret",
		JWTTTL:          time.Hour,
		LLMModels:       []string{"gemini-1.5-flash"},
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		AIRatePerMinute: 10,
		LogLevel:        "error",
	}
}

func call(t *testing.T, app *App, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildInMemoryWiresRoutesAndReminders(t *testing.T) {
	mailer := &recordingMailer{}
	app, err := Build(context.Background(), testConfig(t), Options{
		Providers: map[string]llm.Generator{providerGemini: echoGenerator{}},
		Mailer:    mailer,
	})
	require.NoError(t, err)
	defer app.Close()
	require.Nil(t, app.DB)

	resp := call(t, app, http.MethodGet, "/api/v1/health", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"memory"`)

	resp = call(t, app, http.MethodPost, "/api/v1/auth/signup",
		`{"name":"Grace","email":"grace@example.com","password":"hopper42"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))

	resp = call(t, app, http.MethodPost, "/api/v1/chat",
		`{"history":[{"role":"user","content":"hi"}]}`, session.Token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "answer from gemini-1.5-flash")

	remindAt := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	resp = call(t, app, http.MethodPost, "/api/v1/jobs",
		`{"title":"Backend Engineer","company":"Acme","reminderDate":"`+remindAt+`"}`, session.Token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	sum, err := app.Reminders.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "grace@example.com", mailer.sent[0].To)
	assert.Equal(t, "Reminder: Follow up on Backend Engineer at Acme", mailer.sent[0].Subject)
}

func TestBuildRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMModels = []string{"openai:gpt-4o-mini"}
	_, err := Build(context.Background(), cfg, Options{
		Providers: map[string]llm.Generator{providerGemini: echoGenerator{}},
	})
	require.Error(t, err)
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	_, err := Build(context.Background(), cfg, Options{
		Providers: map[string]llm.Generator{providerGemini: echoGenerator{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
