package cache

import (
	"testing"
	"time"

	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *ListCache {
	c, err := NewListCache(config.CacheConfig{
		ListTTL:     ttl,
		MaxCost:     100,
		NumCounters: 1000,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestListCache_SetAndGet(t *testing.T) {
	c := newTestCache(t, time.Minute)
	list := &domain.URLList{
		Data:       []domain.URLRecord{{ShortID: "abcd1234"}},
		Pagination: domain.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3},
	}

	c.Set(2, 5, list)
	c.Wait()

	got, ok := c.Get(2, 5)
	require.True(t, ok)
	assert.Equal(t, list, got)

	_, ok = c.Get(1, 5)
	assert.False(t, ok)
}

func TestListCache_Expires(t *testing.T) {
	c := newTestCache(t, 50*time.Millisecond)

	c.Set(1, 10, &domain.URLList{})
	c.Wait()

	_, ok := c.Get(1, 10)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)

	_, ok = c.Get(1, 10)
	assert.False(t, ok)
}

func TestListCache_TTL(t *testing.T) {
	c := newTestCache(t, 42*time.Second)
	assert.Equal(t, 42*time.Second, c.TTL())
}
