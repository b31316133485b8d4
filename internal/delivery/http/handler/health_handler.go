package handler

import (
	"context"
	"time"

	"talant-web/internal/delivery/http/dto"
	"talant-web/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const healthPingTimeout = time.Second

type cacheStatus interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	app   string
	env   string
	cache cacheStatus
}

func NewHealthHandler(app, env string, cache cacheStatus) *HealthHandler {
	return &HealthHandler{app: app, env: env, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Get)
}

// Get reports redis as disabled when no cache is configured, otherwise by a
// live ping. The service itself stays healthy without redis.
func (h *HealthHandler) Get(c fiber.Ctx) error {
	redis := "disabled"
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.Context(), healthPingTimeout)
		defer cancel()
		redis = "up"
		if err := h.cache.Ping(ctx); err != nil {
			redis = "down"
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.HealthResponse{App: h.app, Env: h.env, Redis: redis})
}
