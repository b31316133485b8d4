// Command prefetch loads listing snapshots from the backend and stores them
// in Redis so that freshly started web instances skip the cold fetch.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"talant-web/internal/app"
	"talant-web/internal/config"
	"talant-web/internal/domain/listing"
	"talant-web/internal/pkg/logger"
	"talant-web/internal/usecase"

	"go.uber.org/zap"
)

func main() {
	kindFlag := flag.String("kind", "all", "listing to prefetch: candidates, jobs or all")
	timeout := flag.Duration("timeout", 30*time.Second, "per-listing fetch timeout")
	purge := flag.Bool("purge", false, "drop cached snapshots before fetching")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsDevelopment(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	kinds, err := parseKinds(*kindFlag)
	if err != nil {
		zl.Fatal("invalid -kind", zap.String("kind", *kindFlag), zap.Error(err))
	}

	if !run(cfg, zl, kinds, *timeout, *purge) {
		_ = zl.Sync()
		os.Exit(1)
	}
}

// run warms every kind and reports whether all of them were stored.
func run(cfg config.Config, zl *zap.Logger, kinds []listing.Kind, timeout time.Duration, purge bool) bool {
	c, err := app.NewContainer(cfg, zl)
	if err != nil {
		zl.Error("failed to init container", zap.Error(err))
		return false
	}
	defer func() {
		_ = c.Close()
	}()

	if c.Cache == nil || !c.Cache.Available() {
		zl.Warn("[Prefetch] Redis unavailable, snapshots will not be shared")
	}

	if purge {
		purgeSnapshots(c, zl, kinds)
	}

	failed := false
	for _, kind := range kinds {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		res, err := c.Listing.Warm(ctx, kind)
		cancel()
		if err == nil && res.LoadErr != nil {
			err = res.LoadErr
		}
		if err != nil {
			failed = true
			zl.Error("[Prefetch] failed", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		zl.Info("[Prefetch] stored", zap.String("kind", string(kind)), zap.Int("count", res.Count))
	}
	return !failed
}

// purgeSnapshots clears every snapshot key when all kinds are requested,
// or just the selected one otherwise.
func purgeSnapshots(c *app.Container, zl *zap.Logger, kinds []listing.Kind) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(kinds) > 1 && c.Cache != nil {
		if err := c.Cache.DeleteByPattern(ctx, usecase.SnapshotCachePattern()); err != nil {
			zl.Warn("[Prefetch] purge failed", zap.Error(err))
		}
		return
	}
	for _, kind := range kinds {
		if err := c.Listing.Invalidate(ctx, kind); err != nil {
			zl.Warn("[Prefetch] purge failed", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
}

func parseKinds(s string) ([]listing.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return []listing.Kind{listing.KindCandidates, listing.KindJobs}, nil
	}
	k, err := listing.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []listing.Kind{k}, nil
}
