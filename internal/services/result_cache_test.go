package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayah-search-api/internal/models"
)

func TestResultCacheDisabledIsNoop(t *testing.T) {
	cache := NewResultCache(false, 10, time.Hour)

	key := CacheKey("patience", "en", "exact", 10)
	cache.Put(key, []models.RankedResult{{VerseID: 1}})

	_, ok := cache.Get(key)
	assert.False(t, ok)
}

func TestResultCacheHit(t *testing.T) {
	cache := NewResultCache(true, 10, time.Hour)

	key := CacheKey("patience", "en", "exact", 10)
	cache.Put(key, []models.RankedResult{{VerseID: 1}, {VerseID: 2}})

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestResultCacheTTLExpiry(t *testing.T) {
	cache := NewResultCache(true, 10, 10*time.Millisecond)

	key := CacheKey("patience", "en", "exact", 10)
	cache.Put(key, []models.RankedResult{{VerseID: 1}})

	time.Sleep(25 * time.Millisecond)
	_, ok := cache.Get(key)
	assert.False(t, ok)
}

func TestResultCacheEvictsLRU(t *testing.T) {
	cache := NewResultCache(true, 2, time.Hour)

	k1 := CacheKey("one", "en", "exact", 10)
	k2 := CacheKey("two", "en", "exact", 10)
	k3 := CacheKey("three", "en", "exact", 10)

	cache.Put(k1, []models.RankedResult{{VerseID: 1}})
	cache.Put(k2, []models.RankedResult{{VerseID: 2}})

	// Touch k1 so k2 is the eviction victim.
	_, ok := cache.Get(k1)
	require.True(t, ok)

	cache.Put(k3, []models.RankedResult{{VerseID: 3}})

	_, ok = cache.Get(k2)
	assert.False(t, ok)
	_, ok = cache.Get(k1)
	assert.True(t, ok)
	_, ok = cache.Get(k3)
	assert.True(t, ok)
}

func TestCacheKeyNormalizesQuery(t *testing.T) {
	assert.Equal(t,
		CacheKey("  Seek   Help ", "en", "hybrid", 20),
		CacheKey("seek help", "en", "hybrid", 20),
	)
	assert.NotEqual(t,
		CacheKey("seek help", "en", "hybrid", 20),
		CacheKey("seek help", "ar", "hybrid", 20),
	)
	assert.NotEqual(t,
		CacheKey("seek help", "en", "hybrid", 20),
		CacheKey("seek help", "en", "hybrid", 10),
	)
}
