package services

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/dateideas/core/internal/domain/entities"
	"github.com/dateideas/core/internal/infrastructure/logger"
	"github.com/dateideas/core/internal/ports"
)

// DateIdeaService owns the in-memory catalog and keeps the stored document in step with it
type DateIdeaService struct {
	repo     ports.DateIdeaRepository
	storage  ports.ObjectStorage
	logger   *logger.Logger
	randIntN func(n int) int

	mu      sync.RWMutex
	catalog entities.Catalog
}

// NewDateIdeaService creates a new date idea service with an empty catalog
func NewDateIdeaService(repo ports.DateIdeaRepository, storage ports.ObjectStorage, logger *logger.Logger) *DateIdeaService {
	return &DateIdeaService{
		repo:     repo,
		storage:  storage,
		logger:   logger.WithComponent("date_ideas"),
		randIntN: rand.IntN,
		catalog:  entities.Catalog{},
	}
}

// WithRandom replaces the random source used by Pick
func (s *DateIdeaService) WithRandom(randIntN func(n int) int) *DateIdeaService {
	s.randIntN = randIntN
	return s
}

// Load replaces the in-memory catalog with the stored document
func (s *DateIdeaService) Load(ctx context.Context) error {
	catalog, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load date ideas: %w", err)
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()

	s.logger.Infow("Date ideas loaded", "count", len(catalog))
	return nil
}

// List returns all date ideas ordered by id
func (s *DateIdeaService) List() []entities.ListedDateIdea {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.catalog.SortedIDs()
	out := make([]entities.ListedDateIdea, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.ListedDateIdea{ID: id, Idea: *s.catalog[id]})
	}
	return out
}

// Get returns a copy of the date idea with the given id
func (s *DateIdeaService) Get(id string) (*entities.DateIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idea, ok := s.catalog[id]
	if !ok {
		return nil, entities.ErrDateIdeaNotFound
	}
	copied := *idea
	return &copied, nil
}

// Pick chooses one id uniformly at random from the selection
func (s *DateIdeaService) Pick(selected []string) (string, error) {
	if len(selected) == 0 {
		return "", entities.ErrNoSelection
	}
	return selected[s.randIntN(len(selected))], nil
}

// Add creates a placeholder date idea under the next free id and saves the catalog
func (s *DateIdeaService) Add(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.catalog.NextID()
	s.catalog[id] = &entities.DateIdea{Title: entities.DefaultTitle}

	if err := s.repo.Save(ctx, s.catalog); err != nil {
		return id, fmt.Errorf("failed to save new date idea %s: %w", id, err)
	}

	s.logger.Infow("Date idea created", "id", id)
	return id, nil
}

// Save applies the edit form to a date idea, uploading its photo when one is given
func (s *DateIdeaService) Save(ctx context.Context, id string, req ports.SaveDateIdeaRequest) (*entities.DateIdea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idea, ok := s.catalog[id]
	if !ok {
		return nil, entities.ErrDateIdeaNotFound
	}

	if req.Photo != nil && req.Photo.Filename != "" {
		filename := entities.PhotoFilename(id, req.Photo.Filename)

		content, err := io.ReadAll(req.Photo.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo: %w", err)
		}

		if err := s.storage.Upload(ctx, filename, content, req.Photo.ContentType, true); err != nil {
			return nil, fmt.Errorf("failed to upload photo %s: %w", filename, err)
		}

		idea.Photo = filename
		s.logger.Infow("Photo uploaded", "id", id, "filename", filename, "bytes", len(content))
	}

	idea.Title = req.Title
	idea.Description = req.Description
	idea.Logbook = req.Logbook

	if err := s.repo.Save(ctx, s.catalog); err != nil {
		return nil, fmt.Errorf("failed to save date idea %s: %w", id, err)
	}

	s.logger.Infow("Date idea saved", "id", id)
	copied := *idea
	return &copied, nil
}

// Delete removes a date idea and saves the catalog
func (s *DateIdeaService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[id]; !ok {
		return entities.ErrDateIdeaNotFound
	}
	delete(s.catalog, id)

	if err := s.repo.Save(ctx, s.catalog); err != nil {
		return fmt.Errorf("failed to delete date idea %s: %w", id, err)
	}

	s.logger.Infow("Date idea deleted", "id", id)
	return nil
}

// Count returns the number of date ideas in the catalog
func (s *DateIdeaService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}
