package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dateideas/core/internal/adapters/storage/storagetest"
	"github.com/dateideas/core/internal/infrastructure/logger"
)

type observed struct {
	op  string
	err error
}

type fakeObserver struct {
	calls []observed
}

func (f *fakeObserver) ObserveStorageOperation(operation string, err error, _ time.Duration) {
	f.calls = append(f.calls, observed{op: operation, err: err})
}

func TestInstrumentedRecordsOperations(t *testing.T) {
	mem := storagetest.NewMemory()
	obs := &fakeObserver{}
	s := NewInstrumented(mem, obs, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "a.json", []byte(`{}`), "application/json", true))
	require.NoError(t, s.Update(ctx, "a.json", []byte(`{"1":{}}`), "application/json"))
	data, err := s.Download(ctx, "a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":{}}`, string(data))
	_, err = s.CreateSignedURL(ctx, "a.json", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	mem.DownloadErr = errors.New("down")
	_, err = s.Download(ctx, "a.json")
	require.Error(t, err)

	ops := make([]string, 0, len(obs.calls))
	for _, c := range obs.calls {
		ops = append(ops, c.op)
	}
	assert.Equal(t, []string{"upload", "update", "download", "sign", "ping", "download"}, ops)
	assert.Error(t, obs.calls[5].err)
}

func TestInstrumentedNilObserver(t *testing.T) {
	s := NewInstrumented(storagetest.NewMemory(), nil, logger.NewNop())
	assert.NoError(t, s.Ping(context.Background()))
}
