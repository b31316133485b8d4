package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talant-web/internal/config"
	"talant-web/internal/delivery/http/middleware"
	"talant-web/internal/delivery/http/routes"
	"talant-web/internal/domain/listing"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	routes.NewRegistry(routes.Deps{
		AppName:        c.Config.App.AppName,
		Env:            c.Config.App.Environment,
		Cache:          c.Cache,
		Listing:        c.Listing,
		Renderer:       c.Renderer,
		Photos:         c.Backend,
		Hub:            c.Hub,
		Verifier:       c.Verifier,
		SessionCookie:  c.Config.Auth.Cookie,
		LoginURL:       c.Config.Auth.LoginURL,
		FilterDebounce: c.Config.Listing.FilterDebounce,
		Logger:         c.Logger,
	}).Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, starts the hub and warms both listings in
// the background. The returned cleanup stops the hub and closes Redis.
func Bootstrap(cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go c.Hub.Run(ctx)
	go warm(ctx, c)

	app := New(c)
	cleanup := func() error {
		cancel()
		return c.Close()
	}
	return app, cleanup, nil
}

func warm(ctx context.Context, c *Container) {
	for _, kind := range []listing.Kind{listing.KindCandidates, listing.KindJobs} {
		wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		res, err := c.Listing.Warm(wctx, kind)
		cancel()
		if err != nil {
			c.Logger.Warn("[Listing] warm failed", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		if res.LoadErr != nil {
			c.Logger.Warn("[Listing] warm degraded", zap.String("kind", string(kind)), zap.Error(res.LoadErr))
			continue
		}
		c.Logger.Info("[Listing] warmed", zap.String("kind", string(kind)), zap.Int("count", res.Count))
	}
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
