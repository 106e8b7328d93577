package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStorageOperation(t *testing.T) {
	m := New(nil)

	m.ObserveStorageOperation("update", nil, 10*time.Millisecond)
	m.ObserveStorageOperation("update", errors.New("boom"), time.Millisecond)
	m.ObserveStorageOperation("download", nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("update", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("update", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageOps.WithLabelValues("download", "success")))
}

func TestCatalogGauge(t *testing.T) {
	size := 3
	m := New(func() int { return size })

	count, err := testutil.GatherAndCount(m.Registry(), "date_ideas_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	size = 7
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "date_ideas_total" {
			assert.Equal(t, 7.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(nil)
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
