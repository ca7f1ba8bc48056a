package code_analyzer

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/zeebo/xxh3"
	bolt "go.etcd.io/bbolt"
)

const cacheFileName = "signatures.db"

var signaturesBucket = []byte("signatures")

// CacheEntry is the gob-encoded value stored per source content.
type CacheEntry struct {
	Grammar    string
	Signatures []string
	Timestamp  time.Time
	Size       int64
}

// CacheManager stores extracted signatures keyed by grammar, query and content,
// so an unchanged file is never parsed twice.
type CacheManager struct {
	db       *bolt.DB
	cacheDir string
	stats    *CacheStats
}

// DefaultCacheDir returns the per-user cache directory for talos.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(base, "talos"), nil
}

// NewCacheManager opens (or creates) the signature database inside cacheDir.
// An empty cacheDir selects DefaultCacheDir.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cacheDir = dir
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(cacheDir, cacheFileName), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(signaturesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	cacheManager := &CacheManager{
		db:       db,
		cacheDir: cacheDir,
		stats:    newCacheStats(),
	}

	if err := cacheManager.performAutoCleanup(); err != nil {
		db.Close()
		return nil, err
	}

	return cacheManager, nil
}

// Close releases the database file lock.
func (cm *CacheManager) Close() error {
	if cm == nil || cm.db == nil {
		return nil
	}
	return cm.db.Close()
}

// CacheDir returns the directory holding the database file.
func (cm *CacheManager) CacheDir() string {
	return cm.cacheDir
}

// generateCacheKey combines the grammar tag, the query fingerprint and a
// 128-bit hash of the content.
func generateCacheKey(grammar *extractor.Grammar, content []byte) []byte {
	sum := xxh3.Hash128(content).Bytes()
	key := make([]byte, 0, len(grammar.Tag)+1+8+len(sum))
	key = append(key, grammar.Tag...)
	key = append(key, 0)
	key = binary.BigEndian.AppendUint64(key, grammar.Fingerprint)
	return append(key, sum[:]...)
}

// GetSignatures returns the cached signatures for content parsed with grammar.
func (cm *CacheManager) GetSignatures(grammar *extractor.Grammar, content []byte) ([]string, bool) {
	key := generateCacheKey(grammar, content)

	var entry CacheEntry
	found := false
	err := cm.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(signaturesBucket).Get(key)
		if data == nil {
			return nil
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found {
		cm.recordCacheMiss()
		return nil, false
	}

	cm.recordCacheHit(len(entry.Signatures))
	if entry.Signatures == nil {
		return []string{}, true
	}
	return entry.Signatures, true
}

// SetSignatures stores signatures for content parsed with grammar. Concurrent
// callers are coalesced into shared write transactions.
func (cm *CacheManager) SetSignatures(grammar *extractor.Grammar, content []byte, signatures []string) error {
	entry := CacheEntry{
		Grammar:    grammar.Tag,
		Signatures: signatures,
		Timestamp:  time.Now(),
		Size:       int64(len(content)),
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	key := generateCacheKey(grammar, content)
	err := cm.db.Batch(func(tx *bolt.Tx) error {
		return tx.Bucket(signaturesBucket).Put(key, buffer.Bytes())
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// GetCacheStats returns storage statistics for the database.
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	err := cm.db.View(func(tx *bolt.Tx) error {
		stats["cache_entries"] = tx.Bucket(signaturesBucket).Stats().KeyN
		stats["total_size"] = tx.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache database: %w", err)
	}
	stats["cache_dir"] = cm.cacheDir

	return stats, nil
}

// GetDetailedCacheStats adds per-grammar entry counts and the age range of entries.
func (cm *CacheManager) GetDetailedCacheStats() (map[string]interface{}, error) {
	stats, err := cm.GetCacheStats()
	if err != nil {
		return nil, err
	}

	byGrammar := make(map[string]int)
	var signatureCount int
	var oldest, newest time.Time

	err = cm.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(signaturesBucket).ForEach(func(_, value []byte) error {
			var entry CacheEntry
			if err := gob.NewDecoder(bytes.NewReader(value)).Decode(&entry); err != nil {
				return nil
			}
			byGrammar[entry.Grammar]++
			signatureCount += len(entry.Signatures)
			if oldest.IsZero() || entry.Timestamp.Before(oldest) {
				oldest = entry.Timestamp
			}
			if entry.Timestamp.After(newest) {
				newest = entry.Timestamp
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache database: %w", err)
	}

	totalSize := stats["total_size"].(int64)
	stats["total_size_mb"] = float64(totalSize) / (1024 * 1024)
	stats["entries_by_grammar"] = byGrammar
	stats["cached_signatures"] = signatureCount

	if !oldest.IsZero() {
		stats["oldest_entry"] = oldest.Format(time.RFC3339)
		stats["newest_entry"] = newest.Format(time.RFC3339)
		stats["age_range_hours"] = newest.Sub(oldest).Hours()
	}

	return stats, nil
}

// CacheCleanupOptions defines options for cache cleanup
type CacheCleanupOptions struct {
	MaxAge     time.Duration // Remove entries older than this
	MaxEntries int           // Remove oldest entries beyond this count
	DryRun     bool          // Only report what would be removed
}

// SmartCleanupCache removes entries by age first, then the oldest entries
// until at most MaxEntries remain.
func (cm *CacheManager) SmartCleanupCache(options CacheCleanupOptions) (map[string]interface{}, error) {
	type entryInfo struct {
		key       []byte
		timestamp time.Time
	}

	var entries []entryInfo
	err := cm.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(signaturesBucket).ForEach(func(key, value []byte) error {
			info := entryInfo{key: bytes.Clone(key)}
			var entry CacheEntry
			if gob.NewDecoder(bytes.NewReader(value)).Decode(&entry) == nil {
				info.timestamp = entry.Timestamp
			}
			entries = append(entries, info)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache database: %w", err)
	}

	// Oldest first; undecodable entries carry a zero timestamp and go first.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})

	var toDelete [][]byte
	var deletedByAge, deletedByCount int

	remaining := entries
	if options.MaxAge > 0 {
		cutoff := time.Now().Add(-options.MaxAge)
		kept := remaining[:0:0]
		for _, e := range remaining {
			if e.timestamp.Before(cutoff) {
				toDelete = append(toDelete, e.key)
				deletedByAge++
				continue
			}
			kept = append(kept, e)
		}
		remaining = kept
	}

	if options.MaxEntries > 0 && len(remaining) > options.MaxEntries {
		excess := len(remaining) - options.MaxEntries
		for _, e := range remaining[:excess] {
			toDelete = append(toDelete, e.key)
			deletedByCount++
		}
	}

	deleted := 0
	if options.DryRun {
		deleted = len(toDelete)
	} else if len(toDelete) > 0 {
		err = cm.db.Update(func(tx *bolt.Tx) error {
			bucket := tx.Bucket(signaturesBucket)
			for _, key := range toDelete {
				if err := bucket.Delete(key); err != nil {
					return err
				}
				deleted++
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to delete cache entries: %w", err)
		}
	}

	return map[string]interface{}{
		"entries_before_cleanup":    len(entries),
		"entries_marked_for_delete": len(toDelete),
		"entries_actually_deleted":  deleted,
		"deleted_by_age":            deletedByAge,
		"deleted_by_count":          deletedByCount,
		"entries_after_cleanup":     len(entries) - deleted,
		"dry_run":                   options.DryRun,
	}, nil
}

// performAutoCleanup applies conservative limits when the cache is opened.
func (cm *CacheManager) performAutoCleanup() error {
	options := CacheCleanupOptions{
		MaxAge:     30 * 24 * time.Hour,
		MaxEntries: 50000,
	}

	if _, err := cm.SmartCleanupCache(options); err != nil {
		return fmt.Errorf("automatic cache cleanup failed: %w", err)
	}
	return nil
}

// CleanExpiredCache removes entries older than maxAge and returns how many were removed.
func (cm *CacheManager) CleanExpiredCache(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, errors.New("max age must be positive")
	}
	result, err := cm.SmartCleanupCache(CacheCleanupOptions{MaxAge: maxAge})
	if err != nil {
		return 0, err
	}
	return result["entries_actually_deleted"].(int), nil
}

// ClearCache removes every entry and resets the hit/miss counters.
func (cm *CacheManager) ClearCache() error {
	err := cm.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(signaturesBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(signaturesBucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cm.ResetPerformanceStats()
	return nil
}

// GetFullCacheReport returns a report combining performance and storage stats
func (cm *CacheManager) GetFullCacheReport() (map[string]interface{}, error) {
	report := make(map[string]interface{})

	perfStats := cm.GetPerformanceStats()
	report["performance"] = perfStats

	cacheStats, err := cm.GetDetailedCacheStats()
	if err != nil {
		return nil, fmt.Errorf("failed to get detailed cache stats: %w", err)
	}
	report["storage"] = cacheStats

	efficiency := make(map[string]interface{})
	if hitRate := perfStats["hit_rate_percent"].(float64); perfStats["total_requests"].(int64) > 0 {
		efficiency["cache_efficiency"] = "excellent"
		if hitRate < 50 {
			efficiency["cache_efficiency"] = "poor"
		} else if hitRate < 75 {
			efficiency["cache_efficiency"] = "moderate"
		}
	}
	report["efficiency"] = efficiency
	report["generated_at"] = time.Now().Format(time.RFC3339)

	return report, nil
}
