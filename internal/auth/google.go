package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/users"
)

var userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const (
	defaultStateTTL = 5 * time.Minute
	maxProfileBytes = 64 << 10
)

var errUnverifiedEmail = errors.New("google account email is not verified")

// SessionStarter signs in a user verified by Google.
type SessionStarter interface {
	SignInExternal(ctx context.Context, email, name string) (users.Session, error)
}

// GoogleConfig holds the OAuth client settings and the UI page that receives
// the session token.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
	StateTTL     time.Duration
}

// GoogleService signs users in with their Google account. The first sign-in
// for an email creates the account.
type GoogleService struct {
	oauth      *oauth2.Config
	uiRedirect string
	states     *stateStore
	sessions   SessionStarter
}

func NewGoogleService(cfg GoogleConfig, sessions SessionStarter) *GoogleService {
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		uiRedirect: cfg.UIRedirect,
		states:     newStateStore(ttl, time.Now),
		sessions:   sessions,
	}
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != "" && s.uiRedirect != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}
	target := s.oauth.AuthCodeURL(s.states.issue(), oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"))
	c.Redirect(http.StatusFound, target)
}

func (s *GoogleService) callback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		telemetry.Warn("auth.google.denied", map[string]any{"reason": reason})
		respond.Error(c, http.StatusBadRequest, "auth_denied", "Google sign-in was cancelled", nil)
		return
	}
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google.exchange_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	profile, err := s.profile(ctx, token)
	switch {
	case errors.Is(err, errUnverifiedEmail):
		respond.Error(c, http.StatusForbidden, "email_not_verified", "Google account email is not verified", nil)
		return
	case err != nil:
		telemetry.Warn("auth.google.profile_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	session, err := s.sessions.SignInExternal(ctx, profile.Email, profile.displayName())
	if err != nil {
		telemetry.Error("auth.google.session_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}

	target, err := withToken(s.uiRedirect, session.Token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.google.signed_in", map[string]any{"user_id": session.User.ID})
	c.Redirect(http.StatusFound, target)
}

type googleProfile struct {
	Email         string `json:"email"`
	VerifiedEmail *bool  `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func (p googleProfile) displayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return strings.TrimSpace(p.GivenName)
}

func (s *GoogleService) profile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" {
		return googleProfile{}, errors.New("userinfo without email")
	}
	if p.VerifiedEmail != nil && !*p.VerifiedEmail {
		return googleProfile{}, errUnverifiedEmail
	}
	return p, nil
}

func withToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
