package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/domain"
)

// ListCache holds rendered /urls pages in process memory for a short TTL.
type ListCache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

func NewListCache(cfg config.CacheConfig) (*ListCache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create list cache: %w", err)
	}

	return &ListCache{client: client, ttl: cfg.ListTTL}, nil
}

func listKey(page, limit int) string {
	return fmt.Sprintf("urls:%d:%d", page, limit)
}

func (c *ListCache) Get(page, limit int) (*domain.URLList, bool) {
	v, ok := c.client.Get(listKey(page, limit))
	if !ok {
		return nil, false
	}

	list, ok := v.(*domain.URLList)
	return list, ok
}

// Set stores one page. Each page costs 1, so MaxCost bounds the page count.
func (c *ListCache) Set(page, limit int, list *domain.URLList) {
	c.client.SetWithTTL(listKey(page, limit), list, 1, c.ttl)
}

// Wait blocks until buffered writes are visible to Get.
func (c *ListCache) Wait() {
	c.client.Wait()
}

func (c *ListCache) TTL() time.Duration {
	return c.ttl
}

func (c *ListCache) Close() {
	c.client.Close()
}
