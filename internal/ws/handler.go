package ws

import (
	"net/http"
	"time"

	"talant-web/internal/domain/listing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	browser  Browser
	renderer ResultsRenderer
	debounce time.Duration
	logger   *zap.Logger
}

func NewHandler(hub *Hub, browser Browser, renderer ResultsRenderer, debounce time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, browser: browser, renderer: renderer, debounce: debounce, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/ws/:kind", h.HandleListingWS)
}

func (h *Handler) HandleListingWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	kind, err := listing.ParseKind(c.Params("kind"))
	if err != nil {
		return fiber.ErrNotFound
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, kind)
	})
	return fiberHandler(c)
}

// Serve upgrades the request and starts the connection's pumps. The first
// results page is pushed right after the upgrade.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, kind listing.Kind) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WS upgrade error", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, kind, h.logger)
	client.session = NewSession(kind, h.browser, h.renderer, h.debounce, client.trySend, h.logger)
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()
	go client.session.Reload()
}
