package store

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ReadCache wraps a ristretto cache keyed by (equipment_ref, query shape) for
// the two read paths the Forecaster and BathtubModeler call repeatedly per
// request: cost history and class-level repair aggregation. Writers
// (Aggregator, NPVAnalyzer) invalidate the affected keys.
type ReadCache struct {
	c       *ristretto.Cache
	enabled bool
}

// NewReadCache builds a cache sized for maxEntries distinct query results.
// Passing maxEntries <= 0 disables caching entirely (every read goes to the
// store), which the CLI uses for one-shot commands where a cache buys
// nothing.
func NewReadCache(maxEntries int64) (*ReadCache, error) {
	if maxEntries <= 0 {
		return &ReadCache{enabled: false}, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("store: failed to build read cache: %w", err)
	}
	return &ReadCache{c: c, enabled: true}, nil
}

func costHistoryKey(equipmentRef string) string {
	return "cost_history:" + equipmentRef
}

func classRepairsKey(class string) string {
	return "class_repairs:" + class
}

func (rc *ReadCache) get(key string) (interface{}, bool) {
	if rc == nil || !rc.enabled {
		return nil, false
	}
	return rc.c.Get(key)
}

func (rc *ReadCache) set(key string, value interface{}) {
	if rc == nil || !rc.enabled {
		return
	}
	rc.c.SetWithTTL(key, value, 1, 5*time.Minute)
}

func (rc *ReadCache) invalidate(key string) {
	if rc == nil || !rc.enabled {
		return
	}
	rc.c.Del(key)
}
