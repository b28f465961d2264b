package exercises

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

var lookupCacheKey = []byte("exercise-lookup")

// LookupCache keeps the serialized exercise lookup list in memory.
// Every catalog write invalidates it.
type LookupCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

// NewLookupCache allocates sizeMB of cache memory. Freecache refuses entries larger
// than 1/1024 of its size, so sizeMB also bounds the cached list to sizeMB KB.
func NewLookupCache(sizeMB int, ttl time.Duration) *LookupCache {
	return &LookupCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

func (c *LookupCache) Get() ([]LookupItem, bool) {
	raw, err := c.cache.Get(lookupCacheKey)
	if err != nil {
		return nil, false
	}

	var items []LookupItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.Invalidate()
		return nil, false
	}
	return items, true
}

func (c *LookupCache) Set(items []LookupItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal lookup: %w", err)
	}
	if err := c.cache.Set(lookupCacheKey, raw, int(c.ttl.Seconds())); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			return fmt.Errorf("lookup list of %d bytes does not fit the cache: %w", len(raw), err)
		}
		return err
	}
	return nil
}

func (c *LookupCache) Invalidate() {
	c.cache.Del(lookupCacheKey)
}
