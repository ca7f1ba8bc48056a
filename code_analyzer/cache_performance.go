package code_analyzer

import (
	"sync"
	"time"
)

// CacheStats tracks cache lookups for the lifetime of a CacheManager.
type CacheStats struct {
	TotalRequests    int64
	CacheHits        int64
	CacheMisses      int64
	SignaturesServed int64
	LastResetTime    time.Time
	mutex            sync.RWMutex
}

func newCacheStats() *CacheStats {
	return &CacheStats{LastResetTime: time.Now()}
}

// recordCacheHit counts a hit that returned signatureCount signatures
func (cm *CacheManager) recordCacheHit(signatureCount int) {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheHits++
	cm.stats.SignaturesServed += int64(signatureCount)
}

// recordCacheMiss increments cache miss counter
func (cm *CacheManager) recordCacheMiss() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()
	cm.stats.TotalRequests++
	cm.stats.CacheMisses++
}

// GetPerformanceStats returns hit/miss counters and rates since the last reset.
func (cm *CacheManager) GetPerformanceStats() map[string]interface{} {
	if cm.stats == nil {
		return map[string]interface{}{
			"total_requests":    int64(0),
			"cache_hits":        int64(0),
			"cache_misses":      int64(0),
			"signatures_served": int64(0),
			"hit_rate_percent":  0.0,
			"uptime_seconds":    0.0,
		}
	}

	cm.stats.mutex.RLock()
	defer cm.stats.mutex.RUnlock()

	hitRate := 0.0
	if cm.stats.TotalRequests > 0 {
		hitRate = float64(cm.stats.CacheHits) / float64(cm.stats.TotalRequests) * 100
	}

	uptime := time.Since(cm.stats.LastResetTime)

	return map[string]interface{}{
		"total_requests":    cm.stats.TotalRequests,
		"cache_hits":        cm.stats.CacheHits,
		"cache_misses":      cm.stats.CacheMisses,
		"signatures_served": cm.stats.SignaturesServed,
		"hit_rate_percent":  hitRate,
		"uptime_seconds":    uptime.Seconds(),
		"last_reset":        cm.stats.LastResetTime.Format(time.RFC3339),
	}
}

// ResetPerformanceStats resets all performance counters
func (cm *CacheManager) ResetPerformanceStats() {
	if cm.stats == nil {
		return
	}
	cm.stats.mutex.Lock()
	defer cm.stats.mutex.Unlock()

	cm.stats.TotalRequests = 0
	cm.stats.CacheHits = 0
	cm.stats.CacheMisses = 0
	cm.stats.SignaturesServed = 0
	cm.stats.LastResetTime = time.Now()
}
