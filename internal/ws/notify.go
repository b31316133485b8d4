package ws

import (
	"encoding/json"
	"time"

	"talant-web/internal/domain/listing"

	"go.uber.org/zap"
)

type ListingReloadedEvent struct {
	Type      string `json:"type"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// ListingReloaded broadcasts a store replacement to every client.
func (h *Hub) ListingReloaded(kind listing.Kind, count int) {
	if h == nil {
		return
	}
	evt := ListingReloadedEvent{
		Type:      "listing_reloaded",
		Kind:      string(kind),
		Count:     count,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("WS reload event encode failed", zap.Error(err))
		return
	}
	h.Broadcast(kind, b)
}
