package ports

import (
	"context"
	"time"

	"github.com/dateideas/core/internal/domain/entities"
)

// ObjectStorage defines the operations needed from a storage bucket
type ObjectStorage interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error
	Update(ctx context.Context, path string, data []byte, contentType string) error
	CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// DateIdeaRepository defines persistence of the whole date idea catalog
type DateIdeaRepository interface {
	Load(ctx context.Context) (entities.Catalog, error)
	Save(ctx context.Context, catalog entities.Catalog) error
}
