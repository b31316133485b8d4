package usecase

import (
	"context"
	"time"

	"talant-web/internal/domain/listing"
	"talant-web/internal/search"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type ListingBackend interface {
	SearchCandidates(ctx context.Context) ([]listing.Record, error)
	ListJobs(ctx context.Context) ([]listing.Record, error)
}

// ReloadNotifier is told about every successful store replacement.
type ReloadNotifier interface {
	ListingReloaded(kind listing.Kind, count int)
}

type ListingOptions struct {
	PageSize         int
	SnapshotTTL      time.Duration
	RefreshPerMinute int
	// ReloadTimeout bounds one backend fetch. A shorter caller deadline
	// wins. Defaults to 30s.
	ReloadTimeout time.Duration
	Now           func() time.Time
}

type BrowseParams struct {
	Filter search.Filter
	Sort   search.SortKey
	// Page is the requested page, From the page the client is on. A
	// request without From starts from page 1.
	Page int
	From int
}

type BrowseResult struct {
	Kind       listing.Kind
	Items      []listing.Record
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Pager      search.Pager
	Filter     search.Filter
	Sort       search.SortKey
	LoadedAt   time.Time
	LoadErr    error
}

type RefreshResult struct {
	Kind     listing.Kind
	Count    int
	LoadedAt time.Time
	LoadErr  error
}

type ListingUsecase interface {
	Browse(ctx context.Context, kind listing.Kind, params BrowseParams) (BrowseResult, error)
	Refresh(ctx context.Context, kind listing.Kind) (RefreshResult, error)
	Warm(ctx context.Context, kind listing.Kind) (RefreshResult, error)
}

type fetchFunc func(ctx context.Context) ([]listing.Record, error)

type Listing struct {
	sources    map[listing.Kind]fetchFunc
	stores     map[listing.Kind]*Store
	limiters   map[listing.Kind]*rate.Limiter
	predicates *search.Predicates
	cache      SnapshotCache
	notifier   ReloadNotifier
	logger     *zap.Logger

	pageSize      int
	ttl           time.Duration
	reloadTimeout time.Duration
	now           func() time.Time
	group         singleflight.Group
}

func NewListingUsecase(backend ListingBackend, predicates *search.Predicates, cache SnapshotCache, notifier ReloadNotifier, opts ListingOptions, logger *zap.Logger) *Listing {
	if logger == nil {
		logger = zap.NewNop()
	}
	if predicates == nil {
		predicates = search.NewPredicates(search.DefaultTaxonomy())
	}
	if opts.PageSize <= 0 {
		opts.PageSize = search.DefaultPageSize
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 5 * time.Minute
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	u := &Listing{
		sources: map[listing.Kind]fetchFunc{
			listing.KindCandidates: backend.SearchCandidates,
			listing.KindJobs:       backend.ListJobs,
		},
		stores:        make(map[listing.Kind]*Store),
		limiters:      make(map[listing.Kind]*rate.Limiter),
		predicates:    predicates,
		cache:         cache,
		notifier:      notifier,
		logger:        logger,
		pageSize:      opts.PageSize,
		ttl:           opts.SnapshotTTL,
		reloadTimeout: opts.ReloadTimeout,
		now:           opts.Now,
	}
	for kind := range u.sources {
		u.stores[kind] = &Store{}
		u.limiters[kind] = newRefreshLimiter(opts.RefreshPerMinute)
	}
	return u
}

func newRefreshLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func (u *Listing) Browse(ctx context.Context, kind listing.Kind, params BrowseParams) (BrowseResult, error) {
	if _, ok := u.sources[kind]; !ok {
		return BrowseResult{}, ErrUnknownSource
	}
	if params.Page < 0 || params.From < 0 || params.Filter.MinSalary < 0 {
		return BrowseResult{}, ErrInvalidInput
	}

	snap := u.snapshot(ctx, kind)
	sortKey := search.ParseSortKey(string(params.Sort))

	filtered := u.predicates.Apply(snap.Records, params.Filter)
	sorted := search.Sort(filtered, sortKey)
	total := len(sorted)
	totalPages := search.TotalPages(total, u.pageSize)
	page := resolvePage(params, totalPages)

	return BrowseResult{
		Kind:       kind,
		Items:      search.Paginate(sorted, page, u.pageSize),
		Total:      total,
		Page:       page,
		PageSize:   u.pageSize,
		TotalPages: totalPages,
		Pager:      search.Window(page, totalPages),
		Filter:     params.Filter,
		Sort:       sortKey,
		LoadedAt:   snap.LoadedAt,
		LoadErr:    snap.Err,
	}, nil
}

// resolvePage applies a navigation request against the client's current
// page. Requests outside the result range keep the current page.
func resolvePage(p BrowseParams, totalPages int) int {
	current := search.ClampPage(p.From, totalPages)
	if p.Page == 0 {
		return current
	}
	return search.Goto(current, p.Page, totalPages)
}

func (u *Listing) Refresh(ctx context.Context, kind listing.Kind) (RefreshResult, error) {
	lim, ok := u.limiters[kind]
	if !ok {
		return RefreshResult{}, ErrUnknownSource
	}
	if !lim.Allow() {
		u.logger.Info("[Listing] refresh throttled", zap.String("kind", string(kind)))
		return RefreshResult{}, ErrRefreshThrottled
	}
	return refreshResult(kind, u.reload(ctx, kind)), nil
}

// Warm reloads a source without throttling. Used at startup and by the
// prefetch command.
func (u *Listing) Warm(ctx context.Context, kind listing.Kind) (RefreshResult, error) {
	if _, ok := u.sources[kind]; !ok {
		return RefreshResult{}, ErrUnknownSource
	}
	return refreshResult(kind, u.reload(ctx, kind)), nil
}

// Invalidate drops the shared cached copy of a source. The in-process store
// is left alone and keeps serving until its TTL runs out.
func (u *Listing) Invalidate(ctx context.Context, kind listing.Kind) error {
	if _, ok := u.sources[kind]; !ok {
		return ErrUnknownSource
	}
	if u.cache == nil {
		return nil
	}
	key := SnapshotCacheKey(kind)
	if err := u.cache.Delete(ctx, key); err != nil {
		return err
	}
	u.logger.Info("[Listing] Cache DEL", zap.String("key", key))
	return nil
}

func refreshResult(kind listing.Kind, snap Snapshot) RefreshResult {
	return RefreshResult{Kind: kind, Count: len(snap.Records), LoadedAt: snap.LoadedAt, LoadErr: snap.Err}
}

func (u *Listing) snapshot(ctx context.Context, kind listing.Kind) Snapshot {
	snap := u.stores[kind].Snapshot()
	if snap.Loaded() && u.fresh(snap.LoadedAt) {
		return snap
	}
	if !snap.Loaded() {
		if cached, ok := u.readCache(ctx, kind); ok {
			return cached
		}
	}
	return u.reload(ctx, kind)
}

func (u *Listing) fresh(at time.Time) bool {
	return u.now().Sub(at) < u.ttl
}

func (u *Listing) readCache(ctx context.Context, kind listing.Kind) (Snapshot, bool) {
	if u.cache == nil {
		return Snapshot{}, false
	}
	key := SnapshotCacheKey(kind)
	var cached cachedSnapshot
	hit, err := u.cache.GetJSON(ctx, key, &cached)
	if err != nil || !hit || !u.fresh(cached.FetchedAt) {
		u.logger.Info("[Listing] Cache MISS", zap.String("key", key))
		return Snapshot{}, false
	}
	u.logger.Info("[Listing] Cache HIT", zap.String("key", key), zap.Int("count", len(cached.Records)))

	snap := Snapshot{Records: cached.Records, LoadedAt: cached.FetchedAt}
	u.stores[kind].Replace(snap)
	return u.stores[kind].Snapshot(), true
}

// reload fetches a source and replaces its store. Concurrent reloads of the
// same source share one backend call, so the fetch survives cancellation of
// the caller that started it but still honours its deadline.
func (u *Listing) reload(ctx context.Context, kind listing.Kind) Snapshot {
	timeout := u.reloadTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	v, _, _ := u.group.Do(string(kind), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return u.fetch(fctx, kind), nil
	})
	return v.(Snapshot)
}

func (u *Listing) fetch(ctx context.Context, kind listing.Kind) Snapshot {
	start := u.now()
	records, err := u.sources[kind](ctx)
	store := u.stores[kind]
	if err != nil {
		u.logger.Warn("[Listing] reload failed", zap.String("kind", string(kind)), zap.Error(err))
		store.Replace(Snapshot{LoadedAt: u.now(), Err: err})
		return store.Snapshot()
	}

	snap := Snapshot{Records: records, LoadedAt: u.now()}
	store.Replace(snap)
	snap = store.Snapshot()
	u.logger.Info("[Listing] reloaded",
		zap.String("kind", string(kind)),
		zap.Int("count", len(snap.Records)),
		zap.Duration("latency", u.now().Sub(start)),
	)

	if u.cache != nil {
		key := SnapshotCacheKey(kind)
		payload := cachedSnapshot{Kind: kind, FetchedAt: snap.LoadedAt, Records: snap.Records}
		if err := u.cache.SetJSON(ctx, key, payload, 0); err != nil {
			u.logger.Warn("[Listing] Cache SET failed", zap.String("key", key), zap.Error(err))
		} else {
			u.logger.Debug("[Listing] Cache SET", zap.String("key", key))
		}
	}
	if u.notifier != nil {
		u.notifier.ListingReloaded(kind, len(snap.Records))
	}
	return snap
}

var _ ListingUsecase = (*Listing)(nil)
