package routes

import (
	"context"
	"time"

	"talant-web/internal/delivery/http/handler"
	"talant-web/internal/delivery/http/middleware"
	"talant-web/internal/infrastructure/cache"
	"talant-web/internal/pkg/jwt"
	"talant-web/internal/render"
	"talant-web/internal/usecase"
	"talant-web/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Deps struct {
	AppName        string
	Env            string
	Cache          *cache.Redis
	Listing        usecase.ListingUsecase
	Renderer       *render.Renderer
	Photos         handler.PhotoFetcher
	Hub            *ws.Hub
	Verifier       jwt.Verifier
	SessionCookie  string
	LoginURL       string
	FilterDebounce time.Duration
	Logger         *zap.Logger
}

type Registry struct {
	health  *handler.HealthHandler
	listing *handler.ListingHandler
	photo   *handler.PhotoHandler
	live    *ws.Handler
	session *middleware.SessionMiddleware
}

func NewRegistry(d Deps) *Registry {
	var status interface {
		Ping(ctx context.Context) error
	}
	if d.Cache != nil {
		status = d.Cache
	}

	return &Registry{
		health:  handler.NewHealthHandler(d.AppName, d.Env, status),
		listing: handler.NewListingHandler(d.Listing, d.Renderer),
		photo:   handler.NewPhotoHandler(d.Photos, d.Renderer.PlaceholderAvatar(), d.Logger),
		live:    ws.NewHandler(d.Hub, d.Listing, d.Renderer, d.FilterDebounce, d.Logger),
		session: middleware.NewSessionMiddleware(d.Verifier, d.SessionCookie, d.LoginURL),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerStatic(app)

	guarded := app.Group("", r.session.Middleware())
	r.registerPages(guarded)
	r.registerAPI(guarded)
	r.registerLive(guarded)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

// registerStatic mounts routes that stay public: photos are linked from
// cards and fall back to a placeholder anyway.
func (r *Registry) registerStatic(app *fiber.App) {
	app.Get("/", func(c fiber.Ctx) error {
		return c.Redirect().Status(fiber.StatusFound).To("/candidates")
	})
	r.photo.RegisterRoutes(app)
}

func (r *Registry) registerPages(router fiber.Router) {
	r.listing.RegisterPageRoutes(router)
}

func (r *Registry) registerAPI(router fiber.Router) {
	api := router.Group("/api")
	r.listing.RegisterRoutes(api.Group("/v1"))
}

func (r *Registry) registerLive(router fiber.Router) {
	r.live.RegisterRoutes(router)
}
