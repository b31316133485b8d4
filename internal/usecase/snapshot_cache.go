package usecase

import (
	"context"
	"time"

	"talant-web/internal/domain/listing"
)

// SnapshotCache stores the last good snapshot of each source so that a cold
// process can serve pages before its first backend fetch completes.
type SnapshotCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cachedSnapshot struct {
	Kind      listing.Kind     `json:"kind"`
	FetchedAt time.Time        `json:"fetched_at"`
	Records   []listing.Record `json:"records"`
}
