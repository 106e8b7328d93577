package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dateideas/core/internal/domain/entities"
	"github.com/dateideas/core/internal/ports"
)

const documentContentType = "application/json"

// DateIdeaRepositoryImpl stores the catalog as one JSON document in object storage
type DateIdeaRepositoryImpl struct {
	storage  ports.ObjectStorage
	document string
}

// NewDateIdeaRepository creates a repository for the document at the given path
func NewDateIdeaRepository(storage ports.ObjectStorage, document string) ports.DateIdeaRepository {
	return &DateIdeaRepositoryImpl{storage: storage, document: document}
}

// Load downloads and decodes the catalog. A missing document yields an empty catalog.
func (r *DateIdeaRepositoryImpl) Load(ctx context.Context) (entities.Catalog, error) {
	data, err := r.storage.Download(ctx, r.document)
	if err != nil {
		if errors.Is(err, entities.ErrObjectNotFound) {
			return entities.Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to download catalog: %w", err)
	}

	catalog := entities.Catalog{}
	if len(bytes.TrimSpace(data)) == 0 {
		return catalog, nil
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for id, idea := range catalog {
		if idea == nil {
			catalog[id] = &entities.DateIdea{}
		}
	}

	return catalog, nil
}

// Save overwrites the whole document with the catalog
func (r *DateIdeaRepositoryImpl) Save(ctx context.Context, catalog entities.Catalog) error {
	data, err := encodeCatalog(catalog)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	err = r.storage.Update(ctx, r.document, data, documentContentType)
	if errors.Is(err, entities.ErrObjectNotFound) {
		err = r.storage.Upload(ctx, r.document, data, documentContentType, true)
	}
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}

func encodeCatalog(catalog entities.Catalog) ([]byte, error) {
	if catalog == nil {
		catalog = entities.Catalog{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(catalog); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
