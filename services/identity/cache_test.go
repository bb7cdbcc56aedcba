package identity

import (
	"fmt"
	"testing"
	"time"

	"github.com/claraconfirms/backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedUser(email string) *models.User {
	return models.NewUser(email, uuid.New(), models.RoleMember)
}

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(10, 5*time.Minute)

	assert.Nil(t, cache.Get("missing"))

	user := cachedUser("a@example.com")
	cache.Set("uid-a", user)

	got := cache.Get("uid-a")
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCacheFIFOEviction(t *testing.T) {
	cache := NewCache(3, 5*time.Minute)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("uid-%d", i), cachedUser(fmt.Sprintf("u%d@example.com", i)))
	}
	require.Equal(t, 3, cache.Len())

	// Read the oldest entry; FIFO eviction must ignore recency of access
	require.NotNil(t, cache.Get("uid-0"))

	cache.Set("uid-3", cachedUser("u3@example.com"))

	assert.Equal(t, 3, cache.Len())
	assert.Nil(t, cache.Get("uid-0"), "oldest-inserted entry must be evicted")
	assert.NotNil(t, cache.Get("uid-1"))
	assert.NotNil(t, cache.Get("uid-2"))
	assert.NotNil(t, cache.Get("uid-3"))
}

func TestCacheReinsertRefreshesPosition(t *testing.T) {
	cache := NewCache(2, 5*time.Minute)

	cache.Set("uid-a", cachedUser("a@example.com"))
	cache.Set("uid-b", cachedUser("b@example.com"))

	// Re-insert uid-a: it becomes the newest insertion
	cache.Set("uid-a", cachedUser("a2@example.com"))

	cache.Set("uid-c", cachedUser("c@example.com"))

	assert.Nil(t, cache.Get("uid-b"), "uid-b is now the oldest insertion")
	assert.NotNil(t, cache.Get("uid-a"))
	assert.NotNil(t, cache.Get("uid-c"))
}

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Now()
	cache := NewCache(10, 5*time.Minute).WithClock(func() time.Time { return now })

	cache.Set("uid-a", cachedUser("a@example.com"))
	require.NotNil(t, cache.Get("uid-a"))

	now = now.Add(4 * time.Minute)
	assert.NotNil(t, cache.Get("uid-a"), "entry younger than TTL stays")

	now = now.Add(2 * time.Minute)
	assert.Nil(t, cache.Get("uid-a"), "entry older than TTL reads as absent")
	assert.Equal(t, 0, cache.Len(), "expired entry is removed on read")
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(10, 5*time.Minute)

	cache.Set("uid-a", cachedUser("a@example.com"))
	cache.Set("uid-b", cachedUser("b@example.com"))

	cache.Invalidate("uid-a")
	assert.Nil(t, cache.Get("uid-a"))
	assert.NotNil(t, cache.Get("uid-b"))

	cache.InvalidateAll()
	assert.Nil(t, cache.Get("uid-b"))
	assert.Equal(t, 0, cache.Len())

	// Invalidating an absent entry is a no-op
	cache.Invalidate("uid-missing")
}
