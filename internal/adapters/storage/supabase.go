package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dateideas/core/internal/domain/entities"
	"github.com/dateideas/core/internal/infrastructure/config"
)

// StorageError is returned for non-success responses from the storage API
type StorageError struct {
	StatusCode int
	Message    string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage api status %d: %s", e.StatusCode, e.Message)
}

// SupabaseStorage talks to the Supabase Storage REST API for a single bucket
type SupabaseStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

type errorResponse struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// NewSupabaseStorage creates a storage client for the configured bucket
func NewSupabaseStorage(cfg config.StorageConfig) *SupabaseStorage {
	base := strings.TrimRight(cfg.URL, "/") + "/storage/v1"

	c := resty.New().
		SetBaseURL(base).
		SetAuthToken(cfg.Key).
		SetHeader("apikey", cfg.Key).
		SetTimeout(cfg.Timeout)

	return &SupabaseStorage{
		client:  c,
		baseURL: base,
		bucket:  cfg.Bucket,
	}
}

// Download fetches the object at path
func (s *SupabaseStorage) Download(ctx context.Context, path string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.objectPath("object", path))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}

	return resp.Body(), nil
}

// Upload creates the object at path, replacing it when upsert is set
func (s *SupabaseStorage) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	req := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeOrDefault(contentType)).
		SetBody(data)
	if upsert {
		req.SetHeader("x-upsert", "true")
	}

	resp, err := req.Post(s.objectPath("object", path))
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	return nil
}

// Update replaces an existing object at path
func (s *SupabaseStorage) Update(ctx context.Context, path string, data []byte, contentType string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeOrDefault(contentType)).
		SetBody(data).
		Put(s.objectPath("object", path))
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}

	return nil
}

// CreateSignedURL returns an absolute URL granting read access to path for expiresIn
func (s *SupabaseStorage) CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	var out signResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(signRequest{ExpiresIn: int(expiresIn.Seconds())}).
		SetResult(&out).
		Post(s.objectPath("object/sign", path))
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	if err := checkResponse(resp); err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("sign %s: empty signed url in response", path)
	}

	if strings.HasPrefix(out.SignedURL, "http://") || strings.HasPrefix(out.SignedURL, "https://") {
		return out.SignedURL, nil
	}
	return s.baseURL + "/" + strings.TrimLeft(out.SignedURL, "/"), nil
}

// Ping checks that the bucket is reachable with the configured key
func (s *SupabaseStorage) Ping(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/bucket/" + url.PathEscape(s.bucket))
	if err != nil {
		return fmt.Errorf("ping bucket %s: %w", s.bucket, err)
	}
	return checkResponse(resp)
}

func (s *SupabaseStorage) objectPath(prefix, path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + prefix + "/" + url.PathEscape(s.bucket) + "/" + strings.Join(segments, "/")
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	msg := strings.TrimSpace(resp.String())
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		msg = body.Message
	}

	if resp.StatusCode() == http.StatusNotFound || isNotFoundMessage(msg) || isNotFoundMessage(body.Error) {
		return fmt.Errorf("%w: %s", entities.ErrObjectNotFound, msg)
	}

	return &StorageError{StatusCode: resp.StatusCode(), Message: msg}
}

func isNotFoundMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") || m == "not_found"
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
