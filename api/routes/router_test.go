package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifstudio/catalog-mirror/internal/catalog"
	"github.com/wifstudio/catalog-mirror/pkg/config"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
	"github.com/wifstudio/catalog-mirror/pkg/metrics"
)

type stubCatalog struct{}

func (stubCatalog) ListProducts(context.Context, catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{Products: []catalog.ProductDTO{}, Limit: 50}, nil
}

func (stubCatalog) GetProduct(context.Context, int64) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: 1}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T, mediaDir string, registry *prometheus.Registry) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Media.Dir = mediaDir
	cfg.Media.PublicPrefix = "assets/images/shop"

	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, okPinger{}, nil, stubCatalog{}, registry)
}

func TestRouterHealthAndProducts(t *testing.T) {
	router := newTestRouter(t, t.TempDir(), nil)

	for _, path := range []string{"/health/live", "/health/ready", "/api/v1/products", "/api/v1/products/1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t, t.TempDir(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouterServesMetricsWhenRegistryGiven(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewSyncMetrics(registry)
	m.IncSuccess("reconcile")

	router := newTestRouter(t, t.TempDir(), registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sync_success")
}

func TestRouterServesMediaFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("image-bytes"), 0o644))

	router := newTestRouter(t, dir, nil)

	req := httptest.NewRequest(http.MethodGet, "/assets/images/shop/a.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image-bytes", rec.Body.String())
}
