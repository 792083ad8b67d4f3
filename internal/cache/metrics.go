package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveroom_list_cache_hits_total",
		Help: "Number of list reads served from the cache.",
	}, []string{"namespace"})
	cacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveroom_list_cache_misses_total",
		Help: "Number of list reads that fell through to the store.",
	}, []string{"namespace"})
	cacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liveroom_list_cache_errors_total",
		Help: "Number of absorbed cache failures by operation.",
	}, []string{"namespace", "op"})
)
