package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dateideas/core/internal/infrastructure/config"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/ports"
)

const (
	flashCookieName = "flash"
	sessionIDKey    = "session_id"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SessionManager reads and writes the session and flash cookies
type SessionManager struct {
	auth   ports.AuthService
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewSessionManager creates a new session manager
func NewSessionManager(auth ports.AuthService, cfg config.AuthConfig, logger *logger.Logger) *SessionManager {
	return &SessionManager{
		auth:   auth,
		cfg:    cfg,
		logger: logger.WithComponent("session"),
	}
}

// RequireSession redirects to the login page unless the request carries a valid session
func (m *SessionManager) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := m.Current(c)
			if !ok {
				return c.Redirect(http.StatusFound, "/login")
			}

			c.Set(sessionIDKey, claims.ID)
			return next(c)
		}
	}
}

// Current returns the validated session of the request, if any
func (m *SessionManager) Current(c echo.Context) (*ports.SessionClaims, bool) {
	cookie, err := c.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := m.auth.ValidateSession(cookie.Value)
	if err != nil {
		m.logger.Debugw("Rejected session cookie", "error", err, "ip", c.RealIP())
		return nil, false
	}
	return claims, true
}

// Start issues a session and sets it as a cookie
func (m *SessionManager) Start(c echo.Context) error {
	token, err := m.auth.IssueSession()
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.cfg.SessionTTL),
		MaxAge:   int(m.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End removes the session cookie
func (m *SessionManager) End(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AddFlash stores a message to be shown after the next redirect
func (m *SessionManager) AddFlash(c echo.Context, category, message string) {
	payload, err := json.Marshal([]Flash{{Category: category, Message: message}})
	if err != nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeFlashes returns pending messages and clears the flash cookie
func (m *SessionManager) ConsumeFlashes(c echo.Context) []Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:   flashCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
