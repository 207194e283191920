package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wifstudio/catalog-mirror/api/controllers"
	"github.com/wifstudio/catalog-mirror/api/middleware"
	"github.com/wifstudio/catalog-mirror/internal/catalog"
	"github.com/wifstudio/catalog-mirror/pkg/config"
	"github.com/wifstudio/catalog-mirror/pkg/db"
	"github.com/wifstudio/catalog-mirror/pkg/logger"
	"github.com/wifstudio/catalog-mirror/pkg/redis"
)

// NewRouter assembles the storefront read API: health probes, the product
// catalog, prometheus metrics, and the local media directory.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{productId}", controllers.GetProduct(catalogService, logg))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	mountMediaDir(r, cfg.Media)

	return r
}

// mountMediaDir serves materialized images under their public prefix so the
// paths stored on products resolve without a separate file host.
func mountMediaDir(r chi.Router, cfg config.MediaConfig) {
	prefix := "/" + strings.Trim(cfg.PublicPrefix, "/")
	if prefix == "/" {
		return
	}
	fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.Dir)))
	r.Get(prefix+"/*", fs.ServeHTTP)
}
