package maskcache

import "github.com/mohammed-shakir/aperture-engine/internal/raster"

// Cache is the tier contract; it matches aperture.MaskCache.
type Cache interface {
	Get(key string) (*raster.Mask, bool)
	Put(key string, m *raster.Mask)
}

// Tiered reads through its tiers in order and back-fills the faster ones
// on a hit. Put writes every tier.
type Tiered struct {
	tiers []Cache
}

// NewTiered skips nil tiers.
func NewTiered(tiers ...Cache) *Tiered {
	t := &Tiered{}
	for _, c := range tiers {
		if c != nil {
			t.tiers = append(t.tiers, c)
		}
	}
	return t
}

func (t *Tiered) Get(key string) (*raster.Mask, bool) {
	for i, c := range t.tiers {
		m, ok := c.Get(key)
		if !ok {
			continue
		}
		for _, up := range t.tiers[:i] {
			up.Put(key, m)
		}
		return m, true
	}
	return nil, false
}

func (t *Tiered) Put(key string, m *raster.Mask) {
	for _, c := range t.tiers {
		c.Put(key, m)
	}
}
