package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/dateideas/core/internal/domain/entities"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/ports"
)

const (
	msgIncorrectPasscode = "Incorrect passcode. Please try again."
	msgLoggedOut         = "You have been logged out."
)

// pageData is passed to every template
type pageData struct {
	Title         string
	Flashes       []Flash
	Authenticated bool
	DateIdeas     []entities.ListedDateIdea
	ID            string
	Idea          *entities.DateIdea
}

// AuthHandler handles the passcode gate pages
type AuthHandler struct {
	authService ports.AuthService
	sessions    *SessionManager
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, sessions *SessionManager, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the passcode form
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", pageData{
		Title:   "Login",
		Flashes: h.sessions.ConsumeFlashes(c),
	})
}

// Login checks the submitted passcode and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	passcode := c.FormValue("passcode")

	if err := h.authService.CheckPasscode(passcode); err != nil {
		h.logger.LogSecurityEvent("failed_login", c.RealIP(), map[string]interface{}{
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		})
		return c.Render(http.StatusOK, "login.html", pageData{
			Title:   "Login",
			Flashes: []Flash{{Category: "danger", Message: msgIncorrectPasscode}},
		})
	}

	if err := h.sessions.Start(c); err != nil {
		h.logger.Errorw("Failed to start session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start session").SetInternal(err)
	}

	h.logger.Infow("Login succeeded", "ip", c.RealIP())
	return c.Redirect(http.StatusFound, "/")
}

// Logout ends the session
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.End(c)
	h.sessions.AddFlash(c, "info", msgLoggedOut)
	return c.Redirect(http.StatusFound, "/login")
}

// DateIdeaHandler handles browsing and editing date ideas
type DateIdeaHandler struct {
	dateService ports.DateIdeaService
	sessions    *SessionManager
	logger      *logger.Logger
}

// NewDateIdeaHandler creates a new date idea handler
func NewDateIdeaHandler(dateService ports.DateIdeaService, sessions *SessionManager, logger *logger.Logger) *DateIdeaHandler {
	return &DateIdeaHandler{
		dateService: dateService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Index lists all date ideas
func (h *DateIdeaHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", pageData{
		Title:         "Date Ideas",
		Flashes:       h.sessions.ConsumeFlashes(c),
		Authenticated: true,
		DateIdeas:     h.dateService.List(),
	})
}

// PickDate redirects to a random date idea among the checked ones
func (h *DateIdeaHandler) PickDate(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}

	id, err := h.dateService.Pick(params["date"])
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	if _, err := h.dateService.Get(id); err != nil {
		h.logger.Warnw("Picked unknown date idea", "id", id, "ip", c.RealIP())
		return c.Redirect(http.StatusFound, "/")
	}

	return c.Redirect(http.StatusFound, datePath(id, ""))
}

// View shows one date idea
func (h *DateIdeaHandler) View(c echo.Context) error {
	id := c.Param("id")
	idea, err := h.dateService.Get(id)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	return c.Render(http.StatusOK, "date.html", pageData{
		Title:         idea.Title,
		Flashes:       h.sessions.ConsumeFlashes(c),
		Authenticated: true,
		ID:            id,
		Idea:          idea,
	})
}

// Edit shows the edit form of one date idea
func (h *DateIdeaHandler) Edit(c echo.Context) error {
	id := c.Param("id")
	idea, err := h.dateService.Get(id)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	return c.Render(http.StatusOK, "date_edit.html", pageData{
		Title:         "Edit " + idea.Title,
		Authenticated: true,
		ID:            id,
		Idea:          idea,
	})
}

// Save applies the submitted edit form
func (h *DateIdeaHandler) Save(c echo.Context) error {
	id := c.Param("id")

	req := ports.SaveDateIdeaRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Logbook:     c.FormValue("logbook"),
	}

	fileHeader, err := c.FormFile("photo")
	switch {
	case err == nil && fileHeader.Filename != "":
		file, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid photo upload").SetInternal(err)
		}
		defer file.Close()

		req.Photo = &ports.PhotoUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get(echo.HeaderContentType),
			Content:     file,
		}
	case err == nil, errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form").SetInternal(err)
	}

	if _, err := h.dateService.Save(c.Request().Context(), id, req); err != nil {
		return h.mutationError(c, err)
	}

	return c.Redirect(http.StatusFound, datePath(id, ""))
}

// Delete removes one date idea
func (h *DateIdeaHandler) Delete(c echo.Context) error {
	if err := h.dateService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.mutationError(c, err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// Add creates a placeholder date idea and opens its edit form
func (h *DateIdeaHandler) Add(c echo.Context) error {
	id, err := h.dateService.Add(c.Request().Context())
	if err != nil {
		return h.mutationError(c, err)
	}
	return c.Redirect(http.StatusFound, datePath(id, "/edit"))
}

// datePath builds a local path for a date idea. The id is escaped so it always
// stays a single path segment.
func datePath(id, suffix string) string {
	return "/" + url.PathEscape(id) + suffix
}

// mutationError redirects home for unknown ids and reports storage failures as 502
func (h *DateIdeaHandler) mutationError(c echo.Context, err error) error {
	if errors.Is(err, entities.ErrDateIdeaNotFound) {
		return c.Redirect(http.StatusFound, "/")
	}
	return echo.NewHTTPError(http.StatusBadGateway, "Failed to store date ideas").SetInternal(err)
}

// MediaHandler serves uploaded photos
type MediaHandler struct {
	mediaService ports.MediaService
	logger       *logger.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService ports.MediaService, logger *logger.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       logger,
	}
}

// Uploaded redirects to a signed URL for the requested photo
func (h *MediaHandler) Uploaded(c echo.Context) error {
	signed, err := h.mediaService.PhotoURL(c.Request().Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, entities.ErrObjectNotFound) {
			h.logger.Warnw("Photo not found", "filename", c.Param("filename"))
			return echo.NewHTTPError(http.StatusNotFound, "Photo not found")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to sign photo url").SetInternal(err)
	}
	return c.Redirect(http.StatusFound, signed)
}
