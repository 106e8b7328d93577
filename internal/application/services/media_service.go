package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dateideas/core/internal/ports"
)

// MediaService hands out time-limited links to stored photos
type MediaService struct {
	storage ports.ObjectStorage
	ttl     time.Duration
}

// NewMediaService creates a new media service
func NewMediaService(storage ports.ObjectStorage, ttl time.Duration) *MediaService {
	return &MediaService{storage: storage, ttl: ttl}
}

// PhotoURL returns a signed URL for the named photo
func (s *MediaService) PhotoURL(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("photo filename is required")
	}

	signed, err := s.storage.CreateSignedURL(ctx, filename, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign photo url: %w", err)
	}
	return signed, nil
}
