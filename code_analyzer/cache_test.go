package code_analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/meysamhadeli/talos/code_analyzer/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func newTestCache(t *testing.T) *CacheManager {
	t.Helper()
	cacheManager, err := NewCacheManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cacheManager.Close() })
	return cacheManager
}

func grammarFor(t testing.TB, ext string) *extractor.Grammar {
	t.Helper()
	registry, err := extractor.DefaultRegistry()
	require.NoError(t, err)
	grammar, ok := registry.Resolve(ext)
	require.True(t, ok)
	return grammar
}

// putEntryAt writes an entry with a fixed timestamp directly into the database.
func putEntryAt(t *testing.T, cm *CacheManager, grammar *extractor.Grammar, content string, ts time.Time) {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buffer).Encode(CacheEntry{Grammar: grammar.Tag, Timestamp: ts}))
	require.NoError(t, cm.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(signaturesBucket).Put(generateCacheKey(grammar, []byte(content)), buffer.Bytes())
	}))
}

func TestCacheManager_BasicOperations(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")
	content := []byte("function main() {}")

	signatures, found := cacheManager.GetSignatures(grammar, content)
	assert.False(t, found)
	assert.Nil(t, signatures)

	require.NoError(t, cacheManager.SetSignatures(grammar, content, []string{"function main()"}))

	signatures, found = cacheManager.GetSignatures(grammar, content)
	assert.True(t, found)
	assert.Equal(t, []string{"function main()"}, signatures)
}

func TestCacheManager_EmptySignatureListIsAHit(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "css")

	require.NoError(t, cacheManager.SetSignatures(grammar, []byte(""), nil))

	signatures, found := cacheManager.GetSignatures(grammar, []byte(""))
	assert.True(t, found)
	assert.NotNil(t, signatures)
	assert.Empty(t, signatures)
}

func TestCacheManager_ContentChangeMisses(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")

	require.NoError(t, cacheManager.SetSignatures(grammar, []byte("class A {}"), []string{"class A"}))

	_, found := cacheManager.GetSignatures(grammar, []byte("class B {}"))
	assert.False(t, found)
}

func TestCacheManager_KeysAreScopedByGrammar(t *testing.T) {
	cacheManager := newTestCache(t)
	content := []byte("const f = (a) => a;")

	require.NoError(t, cacheManager.SetSignatures(grammarFor(t, "ts"), content, []string{"const f = (a) =>"}))

	_, found := cacheManager.GetSignatures(grammarFor(t, "tsx"), content)
	assert.False(t, found, "typescript and tsx share a query but not a cache entry")

	_, found = cacheManager.GetSignatures(grammarFor(t, "ts"), content)
	assert.True(t, found)
}

func TestCacheManager_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	grammar := grammarFor(t, "js")

	first, err := NewCacheManager(dir)
	require.NoError(t, err)
	require.NoError(t, first.SetSignatures(grammar, []byte("class A {}"), []string{"class A"}))
	require.NoError(t, first.Close())

	second, err := NewCacheManager(dir)
	require.NoError(t, err)
	defer second.Close()

	signatures, found := second.GetSignatures(grammar, []byte("class A {}"))
	assert.True(t, found)
	assert.Equal(t, []string{"class A"}, signatures)
}

func TestCacheManager_AutoCleanupOnOpen(t *testing.T) {
	dir := t.TempDir()
	grammar := grammarFor(t, "js")

	first, err := NewCacheManager(dir)
	require.NoError(t, err)
	putEntryAt(t, first, grammar, "class Stale {}", time.Now().Add(-60*24*time.Hour))
	require.NoError(t, first.SetSignatures(grammar, []byte("class Fresh {}"), []string{"class Fresh"}))
	require.NoError(t, first.Close())

	second, err := NewCacheManager(dir)
	require.NoError(t, err)
	defer second.Close()

	_, found := second.GetSignatures(grammar, []byte("class Stale {}"))
	assert.False(t, found)
	_, found = second.GetSignatures(grammar, []byte("class Fresh {}"))
	assert.True(t, found)
}

func TestCacheManager_AutoCleanupReportsErrors(t *testing.T) {
	cacheManager := newTestCache(t)
	require.NoError(t, cacheManager.db.Close())

	err := cacheManager.performAutoCleanup()
	assert.ErrorIs(t, err, bolt.ErrDatabaseNotOpen)
	assert.ErrorContains(t, err, "automatic cache cleanup failed")
}

func TestCacheManager_ConcurrentAccess(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := []byte(fmt.Sprintf("class C%d {}", i))
			assert.NoError(t, cacheManager.SetSignatures(grammar, content, []string{fmt.Sprintf("class C%d", i)}))
			signatures, found := cacheManager.GetSignatures(grammar, content)
			assert.True(t, found)
			assert.Equal(t, []string{fmt.Sprintf("class C%d", i)}, signatures)
		}(i)
	}
	wg.Wait()

	stats, err := cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 20, stats["cache_entries"])
}

func TestCacheManager_PerformanceStats(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")

	cacheManager.GetSignatures(grammar, []byte("a"))
	require.NoError(t, cacheManager.SetSignatures(grammar, []byte("a"), []string{"x", "y"}))
	cacheManager.GetSignatures(grammar, []byte("a"))

	stats := cacheManager.GetPerformanceStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, int64(2), stats["signatures_served"])
	assert.InDelta(t, 50.0, stats["hit_rate_percent"], 0.001)

	cacheManager.ResetPerformanceStats()
	stats = cacheManager.GetPerformanceStats()
	assert.Equal(t, int64(0), stats["total_requests"])
}

func TestCacheManager_CleanExpiredCache(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")

	putEntryAt(t, cacheManager, grammar, "old", time.Now().Add(-48*time.Hour))
	putEntryAt(t, cacheManager, grammar, "new", time.Now())

	removed, err := cacheManager.CleanExpiredCache(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, found := cacheManager.GetSignatures(grammar, []byte("old"))
	assert.False(t, found)
	_, found = cacheManager.GetSignatures(grammar, []byte("new"))
	assert.True(t, found)

	_, err = cacheManager.CleanExpiredCache(0)
	assert.Error(t, err)
}

func TestCacheManager_SmartCleanupByCount(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "js")
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		putEntryAt(t, cacheManager, grammar, fmt.Sprintf("entry-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	dryRun, err := cacheManager.SmartCleanupCache(CacheCleanupOptions{MaxEntries: 2, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, dryRun["entries_marked_for_delete"])
	assert.Equal(t, 5, dryRun["entries_before_cleanup"])

	stats, err := cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats["cache_entries"])

	result, err := cacheManager.SmartCleanupCache(CacheCleanupOptions{MaxEntries: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result["deleted_by_count"])
	assert.Equal(t, 2, result["entries_after_cleanup"])

	for i, want := range []bool{false, false, false, true, true} {
		_, found := cacheManager.GetSignatures(grammar, []byte(fmt.Sprintf("entry-%d", i)))
		assert.Equal(t, want, found, "entry-%d", i)
	}
}

func TestCacheManager_ClearCache(t *testing.T) {
	cacheManager := newTestCache(t)
	grammar := grammarFor(t, "css")

	require.NoError(t, cacheManager.SetSignatures(grammar, []byte(".a{}"), []string{".a"}))
	cacheManager.GetSignatures(grammar, []byte(".a{}"))

	require.NoError(t, cacheManager.ClearCache())

	stats, err := cacheManager.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["cache_entries"])
	assert.Equal(t, int64(0), cacheManager.GetPerformanceStats()["total_requests"])

	_, found := cacheManager.GetSignatures(grammar, []byte(".a{}"))
	assert.False(t, found)
}

func TestCacheManager_DetailedStatsAndReport(t *testing.T) {
	cacheManager := newTestCache(t)

	require.NoError(t, cacheManager.SetSignatures(grammarFor(t, "css"), []byte(".a{}"), []string{".a"}))
	require.NoError(t, cacheManager.SetSignatures(grammarFor(t, "js"), []byte("class A {}"), []string{"class A"}))
	require.NoError(t, cacheManager.SetSignatures(grammarFor(t, "js"), []byte("class B {}"), []string{"class B"}))

	detailed, err := cacheManager.GetDetailedCacheStats()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"css": 1, "javascript": 2}, detailed["entries_by_grammar"])
	assert.Equal(t, 3, detailed["cached_signatures"])
	assert.Contains(t, detailed, "oldest_entry")

	report, err := cacheManager.GetFullCacheReport()
	require.NoError(t, err)
	assert.Contains(t, report, "performance")
	assert.Contains(t, report, "storage")
	assert.Contains(t, report, "efficiency")
}
