package app

import (
	"fmt"
	"strings"

	"talant-web/internal/config"
	"talant-web/internal/infrastructure/backend"
	"talant-web/internal/infrastructure/cache"
	"talant-web/internal/pkg/jwt"
	"talant-web/internal/render"
	"talant-web/internal/search"
	"talant-web/internal/usecase"
	"talant-web/internal/ws"

	"go.uber.org/zap"
)

// Container owns the long-lived dependencies shared by the HTTP server and
// the prefetch command.
type Container struct {
	Config   config.Config
	Logger   *zap.Logger
	Cache    *cache.Redis
	Backend  backend.Client
	Hub      *ws.Hub
	Listing  *usecase.Listing
	Renderer *render.Renderer
	Verifier jwt.Verifier
	Taxonomy search.Taxonomy
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	if client == nil {
		return nil, fmt.Errorf("backend base url is empty")
	}

	taxonomy, err := search.LoadTaxonomy(cfg.Listing.TaxonomyFile)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Backend:  client,
		Hub:      ws.NewHub(logger),
		Taxonomy: taxonomy,
	}

	var snapshots usecase.SnapshotCache
	if strings.TrimSpace(cfg.Redis.Host) != "" {
		c.Cache = cache.NewRedis(cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			TTL:      cfg.Redis.TTL,
		}, logger)
		snapshots = c.Cache
	} else {
		logger.Info("[Cache] REDIS_HOST not set, snapshots kept in memory only")
	}

	c.Listing = usecase.NewListingUsecase(
		client,
		search.NewPredicates(taxonomy),
		snapshots,
		c.Hub,
		usecase.ListingOptions{
			PageSize:         cfg.Listing.PageSize,
			SnapshotTTL:      cfg.Listing.SnapshotTTL,
			RefreshPerMinute: cfg.Listing.RefreshPerMinute,
		},
		logger,
	)

	c.Renderer, err = render.New(render.Options{
		AppName:           cfg.App.AppName,
		PlaceholderAvatar: cfg.App.PlaceholderAvatarURL,
		Taxonomy:          taxonomy,
		LiveChannel:       true,
	})
	if err != nil {
		return nil, err
	}

	if secret := strings.TrimSpace(cfg.Auth.JWTSecret); secret != "" {
		c.Verifier = jwt.NewHMACService(secret)
	} else {
		logger.Info("[Auth] AUTH_JWT_SECRET not set, pages are public")
	}

	return c, nil
}

func (c *Container) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}
