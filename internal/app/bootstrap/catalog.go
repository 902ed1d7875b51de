package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vitaldent/clinic-site/internal/catalog"
	appconfig "github.com/vitaldent/clinic-site/internal/config"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// Catalog groups the catalog pieces the API server needs.
type Catalog struct {
	Loader *catalog.Loader
	// Repo is nil unless the catalog is staff-editable.
	Repo catalog.Repository
	// Cache is nil unless Redis fronts the source.
	Cache catalog.Invalidator
}

// BuildCatalog selects the treatment source from CATALOG_SOURCE. pool and
// redisClient may be nil.
func BuildCatalog(cfg *appconfig.Config, pool *pgxpool.Pool, redisClient *redis.Client, observer catalog.LoadObserver, logger *logging.Logger) (*Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		source catalog.Source
		repo   catalog.Repository
	)
	name := cfg.CatalogSource
	switch name {
	case "", "static":
		name = "static"
		source = catalog.NewStaticSource()
	case "remote":
		if cfg.CatalogURL == "" {
			return nil, fmt.Errorf("bootstrap: CATALOG_URL is required for the remote catalog")
		}
		source = catalog.NewRemoteSource(cfg.CatalogURL, &http.Client{}, cfg.CatalogFetchTimeout)
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: DATABASE_URL is required for the postgres catalog")
		}
		pgRepo := catalog.NewPostgresRepository(pool)
		source, repo = pgRepo, pgRepo
	case "memory":
		memRepo := catalog.NewInMemoryRepository()
		source, repo = memRepo, memRepo
	default:
		return nil, fmt.Errorf("bootstrap: unknown catalog source %q", cfg.CatalogSource)
	}

	out := &Catalog{Repo: repo}
	if redisClient != nil && name != "static" {
		cached := catalog.NewCachedSource(source, redisClient, cfg.CatalogCacheTTL, logger.Component("catalog-cache"))
		source = cached
		out.Cache = cached
	}

	opts := []catalog.LoaderOption{catalog.WithTimeout(cfg.CatalogFetchTimeout)}
	if observer != nil {
		opts = append(opts, catalog.WithObserver(observer))
	}
	out.Loader = catalog.NewLoader(source, name, logger.Component("catalog"), opts...)
	logger.Info("catalog configured", "source", name, "editable", repo != nil, "cached", out.Cache != nil)
	return out, nil
}
