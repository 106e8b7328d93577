// Package storagetest provides an in-memory ObjectStorage for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dateideas/core/internal/domain/entities"
)

// Object is a stored object with its content type
type Object struct {
	Data        []byte
	ContentType string
}

// Call records one mutating call made against Memory
type Call struct {
	Op     string
	Path   string
	Upsert bool
}

// Memory is an in-memory bucket. Set the Err fields to inject failures.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	calls   []Call

	DownloadErr error
	WriteErr    error
	SignErr     error
	PingErr     error
}

// NewMemory returns an empty in-memory bucket
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

// Put stores an object directly, bypassing call recording
func (m *Memory) Put(path string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
}

// Get returns a stored object
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	return obj, ok
}

// Calls returns the recorded mutating calls
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Memory) Download(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("download %s: %w", path, entities.ErrObjectNotFound)
	}
	return append([]byte(nil), obj.Data...), nil
}

func (m *Memory) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "upload", Path: path, Upsert: upsert})
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if _, exists := m.objects[path]; exists && !upsert {
		return fmt.Errorf("upload %s: object already exists", path)
	}
	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *Memory) Update(ctx context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: "update", Path: path})
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if _, exists := m.objects[path]; !exists {
		return fmt.Errorf("update %s: %w", path, entities.ErrObjectNotFound)
	}
	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *Memory) CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SignErr != nil {
		return "", m.SignErr
	}
	return fmt.Sprintf("https://storage.test/object/sign/%s?expires=%d", path, int(expiresIn.Seconds())), nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return m.PingErr
}
