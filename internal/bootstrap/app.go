package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/analyses"
	googleauth "jobassist-backend/internal/auth"
	"jobassist-backend/internal/chats"
	"jobassist-backend/internal/coverletters"
	"jobassist-backend/internal/jobs"
	"jobassist-backend/internal/llm"
	"jobassist-backend/internal/llm/gemini"
	"jobassist-backend/internal/llm/openai"
	"jobassist-backend/internal/ocr"
	"jobassist-backend/internal/reminders"
	"jobassist-backend/internal/resumecheck"
	"jobassist-backend/internal/services/health"
	"jobassist-backend/internal/shared/auth"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/shared/server"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/storage/db"
	"jobassist-backend/internal/shared/storage/scratch"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/users"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// App holds process-scoped dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Scratch   *scratch.Store
	Signer    *auth.Signer
	LLM       *llm.Ranked
	Mailer    reminders.Mailer
	Reminders *reminders.Job
	Scheduler *reminders.Scheduler

	UsersService       *users.Service
	AnalysesService    *analyses.Service
	ChatsService       *chats.Service
	JobsService        *jobs.Service
	CoverLetterService *coverletters.Service
	Pipeline           *resumecheck.Pipeline
}

// Options lets callers replace externally backed pieces, mostly for tests.
type Options struct {
	Providers map[string]llm.Generator
	OCRRunner ocr.Runner
	Mailer    reminders.Mailer
}

// Build prepares shared dependencies and wires the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.Configure(cfg.LogLevel, cfg.LogFormat)

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL, !cfg.IsDevLike())
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	providers := opts.Providers
	if providers == nil {
		providers, err = buildProviders(ctx, cfg)
		if err != nil {
			closeDB(sqlDB)
			return nil, err
		}
	}
	var models []llm.ModelRef
	if len(providers) == 0 && cfg.IsDevLike() {
		telemetry.Warn("bootstrap.llm.disabled", map[string]any{"reason": "no AI provider configured"})
	} else {
		models, err = llm.ParseModels(cfg.LLMModels, providerGemini, providers)
		if err != nil {
			closeDB(sqlDB)
			return nil, fmt.Errorf("configure models: %w", err)
		}
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Scratch: scratch.New(cfg.UploadDir),
		Signer:  signer,
		LLM:     &llm.Ranked{Models: models},
		Mailer:  opts.Mailer,
	}
	if app.Mailer == nil {
		app.Mailer = buildMailer(cfg)
	}

	app.Router = buildServices(app, opts)
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		sqlDB.Close()
	}
}

func buildProviders(ctx context.Context, cfg config.Config) (map[string]llm.Generator, error) {
	providers := map[string]llm.Generator{}
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		providers[providerGemini] = client
	}
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		client, err := openai.NewClient(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		providers[providerOpenAI] = client
	}
	if len(providers) == 0 && !cfg.IsDevLike() {
		return nil, errors.New("no AI provider configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}
	return providers, nil
}

func buildMailer(cfg config.Config) reminders.Mailer {
	if cfg.EmailUser != "" && cfg.EmailPass != "" {
		return reminders.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
	}
	telemetry.Warn("bootstrap.mailer.log", map[string]any{"reason": "EMAIL_USER or EMAIL_PASS empty"})
	return reminders.LogMailer{}
}

func buildServices(app *App, opts Options) *gin.Engine {
	var (
		userRepo     users.Repo
		analysisRepo analyses.Repo
		chatRepo     chats.Repo
		jobRepo      jobs.Repo
		letterRepo   coverletters.Repo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		chatRepo = &chats.PGRepo{DB: app.DB}
		jobRepo = &jobs.PGRepo{DB: app.DB}
		letterRepo = &coverletters.PGRepo{DB: app.DB}
	} else {
		memUsers := users.NewMemoryRepo()
		userRepo = memUsers
		analysisRepo = analyses.NewMemoryRepo()
		chatRepo = chats.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo(userContacts(memUsers))
		letterRepo = coverletters.NewMemoryRepo()
	}

	app.UsersService = users.NewService(userRepo, app.Signer)
	app.AnalysesService = analyses.NewService(analysisRepo)
	app.ChatsService = chats.NewService(app.LLM, chatRepo)
	app.JobsService = jobs.NewService(jobRepo)
	app.CoverLetterService = coverletters.NewService(letterRepo)

	fallback := ocr.New(ocr.Config{
		RasterCmd:   app.Config.OCRRasterCmd,
		EngineCmd:   app.Config.OCREngineCmd,
		Lang:        app.Config.OCRLang,
		Density:     app.Config.OCRDensity,
		Concurrency: app.Config.OCRConcurrency,
	}, opts.OCRRunner, app.Scratch)
	app.Pipeline = resumecheck.NewPipeline(
		ocr.Strategy{Fallback: fallback},
		&analyses.Scorer{LLM: app.LLM},
		app.AnalysesService,
	)

	app.Reminders = reminders.NewJob(jobRepo, app.Mailer)
	app.Scheduler = reminders.NewScheduler(app.Reminders)

	var google *googleauth.GoogleService
	if app.Config.GoogleClientID != "" {
		google = googleauth.NewGoogleService(googleauth.GoogleConfig{
			ClientID:     app.Config.GoogleClientID,
			ClientSecret: app.Config.GoogleClientSecret,
			RedirectURL:  app.Config.GoogleRedirectURL,
			UIRedirect:   app.Config.UIRedirectURL,
		}, app.UsersService)
	}

	return server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		Verifier:           app.Signer,
		Health:             health.NewService(app.DB),
		UserHandler:        users.NewHandler(app.UsersService),
		GoogleAuth:         google,
		ResumeCheckHandler: resumecheck.NewHandler(app.Pipeline, app.Scratch, app.Config.MaxUploadBytes),
		AnalysisHandler:    analyses.NewHandler(app.AnalysesService),
		ChatHandler:        chats.NewHandler(app.ChatsService),
		JobHandler:         jobs.NewHandler(app.JobsService, app.Scratch),
		CoverLetterHandler: coverletters.NewHandler(app.CoverLetterService),
		RateLimiter:        middleware.NewRateLimiter(nil),
	})
}

// userContacts resolves reminder recipients from the in-memory user store.
func userContacts(repo users.Repo) jobs.ContactLookup {
	return func(ctx context.Context, userID string) (string, string, bool) {
		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			return "", "", false
		}
		return u.Name, u.Email, true
	}
}
