package pnl

import (
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/rustyeddy/tradejournal/trade"
)

// Cache memoises aggregates of a versioned trade set. Callers pass the
// version that matches the trades; any mutation of the set must either
// bump the version or call Invalidate. A nil *Cache computes every time.
type Cache struct {
	c *ristretto.Cache
}

func NewCache(maxCost int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Totals(version uint64, trades []trade.Trade) Totals {
	if c == nil {
		return ComputeTotals(trades)
	}
	key := fmt.Sprintf("totals/%d", version)
	if v, ok := c.c.Get(key); ok {
		return v.(Totals)
	}
	t := ComputeTotals(trades)
	c.set(key, t, 1)
	return t
}

func (c *Cache) Series(version uint64, trades []trade.Trade, r Range) []Point {
	if c == nil {
		return CumulativeSeries(trades, r)
	}
	key := fmt.Sprintf("series/%d/%s", version, r)
	if v, ok := c.c.Get(key); ok {
		return append([]Point(nil), v.([]Point)...)
	}
	s := CumulativeSeries(trades, r)
	c.set(key, s, int64(len(s))+1)
	return append([]Point(nil), s...)
}

func (c *Cache) Stats(version uint64, trades []trade.Trade) Stats {
	if c == nil {
		return ComputeStats(trades)
	}
	key := fmt.Sprintf("stats/%d", version)
	if v, ok := c.c.Get(key); ok {
		return v.(Stats)
	}
	s := ComputeStats(trades)
	c.set(key, s, 1)
	return s
}

func (c *Cache) set(key string, v any, cost int64) {
	c.c.Set(key, v, cost)
	c.c.Wait()
}

// Invalidate drops every memoised aggregate.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.c.Clear()
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.c.Close()
}
