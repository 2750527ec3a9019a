package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/02loveslollipop/library-occupancy/services/api/db"
	"github.com/02loveslollipop/library-occupancy/services/api/metrics"
	"github.com/02loveslollipop/library-occupancy/services/api/occupancy"
)

// Source loads the most recent raw readings, newest first.
type Source interface {
	FetchLatestReadings(ctx context.Context, limit int) ([]db.RawReading, error)
}

// Publisher receives every snapshot that made it into the cache.
type Publisher interface {
	Publish(ctx context.Context, snap occupancy.Snapshot) error
}

// Options configures a Refresher.
type Options struct {
	Limit     int
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Publisher Publisher
	Now       func() time.Time
}

// Refresher runs the fetch, normalize, aggregate pipeline and swaps the
// result into a Cache.
type Refresher struct {
	source    Source
	cache     *Cache
	limit     int
	log       *zap.Logger
	metrics   *metrics.Metrics
	publisher Publisher
	now       func() time.Time

	tickets atomic.Uint64
	group   singleflight.Group

	publishMu     sync.Mutex
	lastPublished uint64
}

// NewRefresher wires a refresher for source and cache.
func NewRefresher(source Source, cache *Cache, opts Options) (*Refresher, error) {
	if source == nil {
		return nil, errors.New("source must not be nil")
	}
	if cache == nil {
		return nil, errors.New("cache must not be nil")
	}
	if opts.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Refresher{
		source:    source,
		cache:     cache,
		limit:     opts.Limit,
		log:       logger.With(zap.String("component", "occupancy_refresher")),
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		now:       now,
	}, nil
}

// Refresh runs one pipeline cycle. On failure the cache is left untouched
// and the error is returned after being logged.
func (r *Refresher) Refresh(ctx context.Context) error {
	ticket := r.tickets.Add(1)
	begin := time.Now()

	result, err := r.refresh(ctx, ticket)
	r.metrics.ObserveRefresh(result, time.Since(begin))
	if err != nil {
		r.logFailure(err, ticket)
	}
	return err
}

// RefreshShared refreshes and returns the cached snapshot. Concurrent
// callers share a single in-flight refresh.
func (r *Refresher) RefreshShared(ctx context.Context) (occupancy.Snapshot, error) {
	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.Refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return occupancy.Snapshot{}, err
	}
	snap, ok := r.cache.Load()
	if !ok {
		return occupancy.Snapshot{}, occupancy.ErrNoValidData
	}
	return snap, nil
}

func (r *Refresher) refresh(ctx context.Context, ticket uint64) (string, error) {
	rows, err := r.source.FetchLatestReadings(ctx, r.limit)
	if err != nil {
		return classify(err), err
	}

	entries, err := occupancy.Normalize(rows, r.log)
	if err != nil {
		return classify(err), err
	}

	snap, err := occupancy.Build(entries, r.now())
	if err != nil {
		return classify(err), err
	}

	if !r.cache.Replace(snap, ticket) {
		r.log.Info("discarding out-of-order refresh result", zap.Uint64("ticket", ticket))
		return metrics.ResultDiscarded, nil
	}

	r.metrics.ObserveSnapshot(snap.LatestTimestamp, snap.AveragePersons, *snap.CurrentPersons, len(rows)-len(entries))
	r.log.Info("occupancy snapshot refreshed",
		zap.Uint64("ticket", ticket),
		zap.Int("rows", len(rows)),
		zap.Int("entries", len(entries)),
		zap.Float64("average_persons", snap.AveragePersons),
		zap.Float64("current_persons", *snap.CurrentPersons),
		zap.Time("latest_timestamp", snap.LatestTimestamp),
	)

	r.publish(ctx, snap, ticket)
	return metrics.ResultSuccess, nil
}

// publish mirrors snap unless a newer ticket already reached the cache or
// the publisher. Writes are serialized so the mirror ends on the newest
// snapshot.
func (r *Refresher) publish(ctx context.Context, snap occupancy.Snapshot, ticket uint64) {
	if r.publisher == nil {
		return
	}

	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	if ticket <= r.lastPublished || r.cache.ticket() != ticket {
		r.log.Debug("skipping mirror of superseded snapshot", zap.Uint64("ticket", ticket))
		return
	}
	r.lastPublished = ticket

	if err := r.publisher.Publish(ctx, snap); err != nil {
		r.metrics.MirrorFailed()
		r.log.Warn("failed to mirror snapshot", zap.Error(err))
	}
}

func (r *Refresher) logFailure(err error, ticket uint64) {
	fields := []zap.Field{zap.Uint64("ticket", ticket), zap.Error(err)}
	switch {
	case errors.Is(err, db.ErrStoreUnavailable):
		r.log.Error("occupancy refresh skipped: store unavailable", fields...)
	case errors.Is(err, occupancy.ErrMalformedInput):
		r.log.Error("occupancy refresh skipped: malformed input", fields...)
	case errors.Is(err, occupancy.ErrNoValidData):
		r.log.Warn("occupancy refresh skipped: no valid data", fields...)
	default:
		r.log.Error("occupancy refresh failed", fields...)
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, db.ErrStoreUnavailable):
		return metrics.ResultStoreUnavailable
	case errors.Is(err, occupancy.ErrMalformedInput):
		return metrics.ResultMalformedInput
	case errors.Is(err, occupancy.ErrNoValidData):
		return metrics.ResultNoValidData
	default:
		return metrics.ResultError
	}
}
