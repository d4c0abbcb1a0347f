package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/analyses"
	googleauth "jobassist-backend/internal/auth"
	"jobassist-backend/internal/chats"
	"jobassist-backend/internal/coverletters"
	"jobassist-backend/internal/jobs"
	"jobassist-backend/internal/resumecheck"
	"jobassist-backend/internal/services/health"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/users"
)

const aiRateGroup = "ai"

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config             config.Config
	Verifier           middleware.TokenVerifier
	Health             *health.Service
	UserHandler        *users.Handler
	GoogleAuth         *googleauth.GoogleService
	ResumeCheckHandler *resumecheck.Handler
	AnalysisHandler    *analyses.Handler
	ChatHandler        *chats.Handler
	JobHandler         *jobs.Handler
	CoverLetterHandler *coverletters.Handler
	RateLimiter        *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublicRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	authed := api.Group("", middleware.Auth(deps.Verifier))
	aiLimit := aiRateLimit(deps)

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.ResumeCheckHandler != nil {
		deps.ResumeCheckHandler.RegisterRoutes(authed, aiLimit)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(authed)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(authed, aiLimit)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(authed)
	}
	if deps.CoverLetterHandler != nil {
		deps.CoverLetterHandler.RegisterRoutes(authed)
	}

	return r
}

func aiRateLimit(deps RouterDeps) gin.HandlerFunc {
	rules := map[string]middleware.RateLimitRule{}
	if n := deps.Config.AIRatePerMinute; n > 0 {
		rules[aiRateGroup] = middleware.PerMinute(n)
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: aiRateGroup,
		Limiter:      deps.RateLimiter,
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
