package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	httpHandlers "github.com/dateideas/core/internal/adapters/http"
	"github.com/dateideas/core/internal/adapters/repository"
	"github.com/dateideas/core/internal/adapters/storage"
	"github.com/dateideas/core/internal/application/services"
	"github.com/dateideas/core/internal/infrastructure/config"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/infrastructure/metrics"
	"github.com/dateideas/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo        *echo.Echo
	config      *config.Config
	logger      *logger.Logger
	storage     ports.ObjectStorage
	dateService *services.DateIdeaService
	metrics     *metrics.Metrics
}

// New creates a new server instance on top of the given bucket client
func New(cfg *config.Config, objectStorage ports.ObjectStorage, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.Debug || cfg.App.IsDevelopment()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Client IP for rate limiting and security logs. Forwarded headers are
	// only honoured behind a trusted proxy.
	if cfg.Server.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	renderer, err := httpHandlers.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	e.Renderer = renderer

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
	}

	// Instrument storage
	var observer storage.OperationObserver
	if cfg.Metrics.Enabled {
		server.metrics = metrics.New(func() int { return server.dateService.Count() })
		observer = server.metrics
	}
	server.storage = storage.NewInstrumented(objectStorage, observer, appLogger)

	// Initialize repositories
	dateRepo := repository.NewDateIdeaRepository(server.storage, cfg.Storage.Document)

	// Initialize services
	server.dateService = services.NewDateIdeaService(dateRepo, server.storage, appLogger)
	mediaService := services.NewMediaService(server.storage, cfg.Storage.SignedURLTTL)
	authService, err := services.NewAuthService(cfg.Auth, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	// Initialize handlers
	sessions := httpHandlers.NewSessionManager(authService, cfg.Auth, appLogger)
	authHandler := httpHandlers.NewAuthHandler(authService, sessions, appLogger)
	dateHandler := httpHandlers.NewDateIdeaHandler(server.dateService, sessions, appLogger)
	mediaHandler := httpHandlers.NewMediaHandler(mediaService, appLogger)

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if server.metrics != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(authHandler, dateHandler, mediaHandler, sessions)

	return server, nil
}

// LoadCatalog reads the stored date ideas into memory
func (s *Server) LoadCatalog(ctx context.Context) error {
	return s.dateService.Load(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' https: data:",
	}))
}

// loginRateLimiter throttles passcode attempts per client IP
func (s *Server) loginRateLimiter() echo.MiddlewareFunc {
	limit := s.config.Security.LoginRateLimit
	window := s.config.Security.LoginRateWindow

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Every(window / time.Duration(limit)),
				Burst:     limit,
				ExpiresIn: window,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.String(http.StatusForbidden, "rate limit exceeded")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.LogSecurityEvent("login_rate_limited", identifier, map[string]interface{}{
				"path": c.Request().URL.Path,
			})
			return c.String(http.StatusTooManyRequests, "Too many attempts. Please wait and try again.")
		},
	})
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, dateHandler *httpHandlers.DateIdeaHandler, mediaHandler *httpHandlers.MediaHandler, sessions *httpHandlers.SessionManager) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Static assets
	s.echo.StaticFS("/static", httpHandlers.StaticFiles())

	// Passcode gate (public)
	s.echo.GET("/login", authHandler.LoginPage)
	s.echo.POST("/login", authHandler.Login, s.loginRateLimiter())
	s.echo.GET("/logout", authHandler.Logout)

	// Date ideas (session required)
	app := s.echo.Group("", sessions.RequireSession())
	app.GET("/", dateHandler.Index)
	app.POST("/pick_date", dateHandler.PickDate)
	app.GET("/add_date", dateHandler.Add)
	app.POST("/add_date", dateHandler.Add)
	app.GET("/uploads/:filename", mediaHandler.Uploaded)
	app.GET("/:id", dateHandler.View)
	app.GET("/:id/edit", dateHandler.Edit)
	app.POST("/:id/save", dateHandler.Save)
	app.POST("/:id/delete", dateHandler.Delete)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"date_ideas": s.dateService.Count(),
		"version":    s.config.App.Version,
	})
}

func (s *Server) readinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  = http.StatusText(http.StatusInternalServerError)
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
				if c.Echo().Debug {
					msg = fmt.Sprintf("%s: %v", msg, he.Internal)
				}
			}
		}

		if code >= http.StatusInternalServerError {
			logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
				WithError(err).
				Errorw("Request failed", "status", code, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.String(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
