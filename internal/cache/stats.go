// Package cache кэш чтения списков задач: в памяти процесса или в Redis.
package cache

import (
	"sync/atomic"
	"todoTracker/internal/metrics"
)

type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

type StatsSnapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

func (s *Stats) hit() {
	atomic.AddUint64(&s.Hits, 1)
	metrics.CacheRequests.WithLabelValues("hit").Inc()
}

func (s *Stats) miss() {
	atomic.AddUint64(&s.Misses, 1)
	metrics.CacheRequests.WithLabelValues("miss").Inc()
}

func (s *Stats) fail() {
	atomic.AddUint64(&s.Errors, 1)
	metrics.CacheRequests.WithLabelValues("error").Inc()
}

func (s *Stats) set() {
	atomic.AddUint64(&s.Sets, 1)
}

func (s *Stats) deleted(n int) {
	atomic.AddUint64(&s.Deletes, uint64(n))
}

func (s *Stats) Snapshot() StatsSnapshot {
	hits := atomic.LoadUint64(&s.Hits)
	misses := atomic.LoadUint64(&s.Misses)
	totalGets := hits + misses

	var hitRate float64
	if totalGets > 0 {
		hitRate = float64(hits) / float64(totalGets) * 100
	}

	return StatsSnapshot{
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadUint64(&s.Sets),
		Deletes:   atomic.LoadUint64(&s.Deletes),
		Errors:    atomic.LoadUint64(&s.Errors),
		HitRate:   hitRate,
		TotalGets: totalGets,
	}
}
