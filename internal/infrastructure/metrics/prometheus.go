// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinematch"

var (
	// CacheOperationsTotal tracks metadata cache operations.
	// Labels:
	//   - operation: get, set
	//   - status: hit, miss, success, error
	//   - cache_type: local, redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of metadata cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// MetadataLookupsTotal tracks external metadata search calls.
	// Labels:
	//   - status: found, error
	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_lookups_total",
			Help:      "Total number of external metadata lookups",
		},
		[]string{"status"},
	)

	// RecommendationsTotal tracks recommendation requests by outcome.
	// Labels:
	//   - status: ok, not_found, error
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"status"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior on enrichment.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight enrichment requests",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet = "get"
	CacheOpSet = "set"
)

// Cache type constants.
const (
	CacheTypeLocal = "local"
	CacheTypeRedis = "redis"
)

// Metadata lookup status constants.
const (
	LookupStatusFound = "found"
	LookupStatusError = "error"
)

// Recommendation status constants.
const (
	RecommendStatusOK       = "ok"
	RecommendStatusNotFound = "not_found"
	RecommendStatusError    = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
