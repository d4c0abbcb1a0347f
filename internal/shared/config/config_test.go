package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LLM_MODELS", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-2.0-flash"}, cfg.LLMModels)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 300, cfg.OCRDensity)
	assert.Equal(t, "0 9 * * *", cfg.ReminderSchedule)
	assert.True(t, cfg.IsDevLike())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LLM_MODELS", " openai:gpt-4o-mini , gemini-2.0-flash ,")
	t.Setenv("OCR_CONCURRENCY", "4")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
	t.Setenv("CLIENT_URL", "https://app.example.com")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []string{"openai:gpt-4o-mini", "gemini-2.0-flash"}, cfg.LLMModels)
	assert.Equal(t, 4, cfg.OCRConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowOrigin)
	assert.False(t, cfg.IsDevLike())
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("OCR_DENSITY", "lots")
	assert.Equal(t, 300, getEnvInt("OCR_DENSITY", 300))
}
