package dispatch

import (
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/roach88/resql/internal/savedquery"
)

// resultCache holds GET results keyed by query and parameters.
type resultCache struct {
	cache *gocache.Cache
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{cache: gocache.New(ttl, 2*ttl)}
}

// key derives the cache key for a query and its parameters. Parameters are
// encoded as JSON, which sorts map keys. Parameters that cannot be encoded
// are not cacheable.
func (c *resultCache) key(k savedquery.Key, params map[string]any) (string, bool) {
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	return k.String() + "?" + string(encoded), true
}

func (c *resultCache) get(key string) ([]Row, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	rows, ok := value.([]Row)
	if !ok {
		return nil, false
	}
	return copyRows(rows), true
}

func (c *resultCache) set(key string, rows []Row) {
	c.cache.Set(key, copyRows(rows), gocache.DefaultExpiration)
}

// copyRows copies the row maps so callers cannot modify cached results.
func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}
