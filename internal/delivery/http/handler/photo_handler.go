package handler

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"talant-web/internal/delivery/http/middleware"
	"talant-web/internal/infrastructure/backend"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type PhotoFetcher interface {
	GetPhoto(ctx context.Context, filename string) (backend.Photo, error)
}

// PhotoHandler proxies candidate photos from the backend so that pages
// never link to the backend origin directly.
type PhotoHandler struct {
	photos      PhotoFetcher
	placeholder string
	logger      *zap.Logger
}

func NewPhotoHandler(photos PhotoFetcher, placeholder string, logger *zap.Logger) *PhotoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoHandler{photos: photos, placeholder: placeholder, logger: logger}
}

func (h *PhotoHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/photos/:filename", h.Get)
}

func (h *PhotoHandler) Get(c fiber.Ctx) error {
	// Cards link with url.PathEscape and the router keeps the raw segment.
	name, err := url.PathUnescape(c.Params("filename"))
	name = strings.TrimSpace(name)
	if err != nil || !validPhotoName(name) {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid photo name", nil, nil)
	}

	photo, err := h.photos.GetPhoto(c.Context(), name)
	if err != nil {
		if !errors.Is(err, backend.ErrPhotoNotFound) {
			h.logger.Warn("[Photo] fetch failed", zap.String("filename", name), zap.Error(err))
		}
		return c.Redirect().Status(fiber.StatusFound).To(h.placeholder)
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.Send(photo.Data)
}

func validPhotoName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return path.Base(name) == name && !strings.ContainsAny(name, `\`)
}
