// Package enricher fetches poster/overview/rating metadata for movie titles
// from an external search API, memoized behind a bounded LRU cache and an
// optional shared remote cache tier.
package enricher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/infrastructure/cache"
	"github.com/hszk-dev/cinematch/internal/infrastructure/metrics"
)

// Config holds configuration for the Enricher.
type Config struct {
	// CacheSize bounds the in-process LRU (distinct original-title keys).
	CacheSize int
	// RemoteTTL is the TTL for entries written to the remote cache tier.
	RemoteTTL time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheSize: 500,
		RemoteTTL: 24 * time.Hour,
	}
}

// Enricher resolves movie titles to external metadata with get-or-compute
// caching. Lookups are keyed by the ORIGINAL title; normalization applies to
// the outbound query only, so titles that normalize identically are not
// cache-shared.
//
// Every failure mode of the external call degrades to an empty Metadata that
// is cached locally, so repeated lookups for a dead title never re-hit the
// network. Empty entries are deliberately kept out of the remote tier: a
// transient outage seen by one instance must not poison the shared cache.
//
// Safe for concurrent use: the LRU is internally locked and singleflight
// coalesces concurrent lookups of the same title.
type Enricher struct {
	client    MetadataClient
	local     *lru.Cache[string, model.Metadata]
	remote    cache.MetadataCache
	sfGroup   singleflight.Group
	remoteTTL time.Duration
}

// New creates an Enricher. remote may be nil to run without the shared tier.
func New(client MetadataClient, remote cache.MetadataCache, cfg Config) (*Enricher, error) {
	local, err := lru.New[string, model.Metadata](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Enricher{
		client:    client,
		local:     local,
		remote:    remote,
		remoteTTL: cfg.RemoteTTL,
	}, nil
}

// Enrich returns metadata for the given title, or the empty Metadata when
// none is available. It never returns an error: enrichment is best-effort and
// recommendations must render even when it fails entirely.
func (e *Enricher) Enrich(ctx context.Context, title string) model.Metadata {
	if meta, ok := e.local.Get(title); ok {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeLocal).Inc()
		return meta
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeLocal).Inc()

	result, _, shared := e.sfGroup.Do(title, func() (any, error) {
		// Detach the lookup from the caller. A request abandoned mid-flight
		// would otherwise cancel the external call and negative-cache the
		// title for every later request. The client's own timeout still
		// bounds the call.
		return e.lookup(context.WithoutCancel(ctx), title), nil
	})
	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	return result.(model.Metadata)
}

// lookup is the single consolidation point mapping remote-tier misses and
// every external-call error variant to a cached result.
func (e *Enricher) lookup(ctx context.Context, title string) model.Metadata {
	// A concurrent caller may have filled the LRU while we waited on the
	// singleflight gate.
	if meta, ok := e.local.Get(title); ok {
		return meta
	}

	if meta := e.fromRemote(ctx, title); meta != nil {
		e.local.Add(title, *meta)
		return *meta
	}

	meta, err := e.client.Search(ctx, NormalizeTitle(title))
	if err != nil {
		slog.Warn("metadata lookup failed, caching empty result",
			slog.String("title", title),
			slog.String("query", NormalizeTitle(title)),
			slog.String("error", err.Error()),
		)
		metrics.MetadataLookupsTotal.WithLabelValues(metrics.LookupStatusError).Inc()
		e.local.Add(title, model.Metadata{})
		return model.Metadata{}
	}

	metrics.MetadataLookupsTotal.WithLabelValues(metrics.LookupStatusFound).Inc()
	e.local.Add(title, meta)
	if err := e.toRemote(ctx, title, meta); err != nil {
		slog.Warn("remote metadata cache set failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
	}
	return meta
}

// Warm resolves metadata for title and fills both cache tiers, reporting
// failures instead of degrading. A definitive no-results answer is cached
// locally and is not an error; a transient lookup or remote-write failure is,
// so queue consumers can retry it.
func (e *Enricher) Warm(ctx context.Context, title string) error {
	if meta := e.fromRemote(ctx, title); meta != nil {
		e.local.Add(title, *meta)
		return nil
	}

	meta, err := e.client.Search(ctx, NormalizeTitle(title))
	if err != nil {
		metrics.MetadataLookupsTotal.WithLabelValues(metrics.LookupStatusError).Inc()
		if errors.Is(err, ErrNoResults) {
			e.local.Add(title, model.Metadata{})
			return nil
		}
		return fmt.Errorf("metadata lookup for %q: %w", title, err)
	}

	metrics.MetadataLookupsTotal.WithLabelValues(metrics.LookupStatusFound).Inc()
	e.local.Add(title, meta)
	if err := e.toRemote(ctx, title, meta); err != nil {
		return fmt.Errorf("cache metadata for %q: %w", title, err)
	}
	return nil
}

func (e *Enricher) fromRemote(ctx context.Context, title string) *model.Metadata {
	if e.remote == nil {
		return nil
	}
	meta, err := e.remote.Get(ctx, title)
	if err != nil {
		slog.Warn("remote metadata cache get failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return nil
	}
	if meta == nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
		return nil
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
	return meta
}

func (e *Enricher) toRemote(ctx context.Context, title string, meta model.Metadata) error {
	if e.remote == nil {
		return nil
	}
	if err := e.remote.Set(ctx, title, meta, e.remoteTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return err
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return nil
}
