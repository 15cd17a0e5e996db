// Package maskcache memoizes rasterized aperture masks. An in-process LRU
// sits in front of an optional shared Redis tier.
package maskcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/aperture-engine/internal/core/observability"
	"github.com/mohammed-shakir/aperture-engine/internal/raster"
)

const tierLRU = "lru"

// LRU is a bounded in-memory mask cache. It is safe for concurrent use.
type LRU struct {
	lru *lru.Cache[string, *raster.Mask]
}

func NewLRU(size int) *LRU {
	if size <= 0 {
		size = 1024
	}
	c, _ := lru.New[string, *raster.Mask](size)
	return &LRU{lru: c}
}

func (l *LRU) Get(key string) (*raster.Mask, bool) {
	m, ok := l.lru.Get(key)
	if !ok {
		observability.IncMaskCacheMiss(tierLRU)
		return nil, false
	}
	observability.IncMaskCacheHit(tierLRU)
	return m, true
}

func (l *LRU) Put(key string, m *raster.Mask) {
	if m == nil {
		return
	}
	l.lru.Add(key, m)
}

func (l *LRU) Len() int { return l.lru.Len() }
