package ports

import (
	"context"
	"io"

	"github.com/dateideas/core/internal/domain/entities"
)

// DateIdeaService interface for date idea operations
type DateIdeaService interface {
	Load(ctx context.Context) error
	List() []entities.ListedDateIdea
	Get(id string) (*entities.DateIdea, error)
	Pick(selected []string) (string, error)
	Add(ctx context.Context) (string, error)
	Save(ctx context.Context, id string, req SaveDateIdeaRequest) (*entities.DateIdea, error)
	Delete(ctx context.Context, id string) error
	Count() int
}

// MediaService interface for photo retrieval
type MediaService interface {
	PhotoURL(ctx context.Context, filename string) (string, error)
}

// AuthService interface for the passcode gate
type AuthService interface {
	CheckPasscode(passcode string) error
	IssueSession() (string, error)
	ValidateSession(token string) (*SessionClaims, error)
}

// SaveDateIdeaRequest carries the edit form of a date idea
type SaveDateIdeaRequest struct {
	Title       string       `form:"title"`
	Description string       `form:"description"`
	Logbook     string       `form:"logbook"`
	Photo       *PhotoUpload `form:"-"`
}

// PhotoUpload is an uploaded photo file
type PhotoUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// SessionClaims describes a validated session
type SessionClaims struct {
	ID            string
	Authenticated bool
}
