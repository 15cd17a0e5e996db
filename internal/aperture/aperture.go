// Package aperture implements on-sky apertures and aperture lists as
// optical effects that define the field-of-view windows and masks.
package aperture

import (
	"fmt"
	"maps"
	"time"

	"github.com/mohammed-shakir/aperture-engine/internal/cache/keys"
	"github.com/mohammed-shakir/aperture-engine/internal/core/observability"
	"github.com/mohammed-shakir/aperture-engine/internal/effects"
	"github.com/mohammed-shakir/aperture-engine/internal/geometry"
	"github.com/mohammed-shakir/aperture-engine/internal/raster"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

const arcsecPerDeg = 3600.0

// GridKind selects what FOVGrid returns.
type GridKind string

const (
	Edges GridKind = "edges"
	Masks GridKind = "masks"
)

type Grid struct {
	Header *raster.Header
	Mask   *raster.Mask
}

func defaultApertureMeta() map[string]any {
	return map[string]any{
		"pixel_scale":    "!INST.pixel_scale",
		"no_mask":        true,
		"angle":          0.0,
		"shape":          "rect",
		"conserve_image": true,
		"id":             0,
		"x_unit":         "arcsec",
		"y_unit":         "arcsec",
		"z_order":        []int{80, 280, 380},
	}
}

// Aperture is a single on-sky window outlined by the x, y columns of its
// table (arcsec unless x_unit/y_unit say otherwise).
//
// Header and mask are computed on first access and cached against the
// table version. Table mutators invalidate them; writes made through the
// slice returned by table.Column do not, and neither do meta changes.
type Aperture struct {
	tbl    *table.Table
	meta   map[string]any
	header cell[raster.Header]
	mask   cell[raster.Mask]
	opts   options
}

var _ effects.Effect = (*Aperture)(nil)

// New wraps tbl. Metadata precedence: defaults, then tbl.Meta, then kwargs.
func New(tbl *table.Table, kwargs map[string]any, opts ...Option) *Aperture {
	if tbl == nil {
		tbl = table.New()
	}
	meta := defaultApertureMeta()
	maps.Copy(meta, tbl.Meta)
	maps.Copy(meta, kwargs)
	return &Aperture{tbl: tbl, meta: meta, opts: buildOptions(opts)}
}

// NewFromArrays builds the vertex table from a map such as
// {"x": []float64{...}, "y": []float64{...}, "id": 3}.
func NewFromArrays(arrays map[string]any, kwargs map[string]any, opts ...Option) (*Aperture, error) {
	tbl, err := table.FromMap(arrays)
	if err != nil {
		return nil, fmt.Errorf("aperture arrays: %w", err)
	}
	return New(tbl, kwargs, opts...), nil
}

func (a *Aperture) Table() *table.Table { return a.tbl }

func (a *Aperture) Meta() map[string]any { return a.meta }

func (a *Aperture) Kind() effects.Kind { return effects.KindApertureMask }

func (a *Aperture) Name() string {
	if s, ok := a.meta["name"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("aperture %v", a.meta["id"])
}

func (a *Aperture) ZOrder() effects.ZOrder {
	z, _ := effects.ParseZOrder(a.meta["z_order"])
	return z
}

// ID returns the aperture id, or 0 when it is not an integer.
func (a *Aperture) ID() int {
	n, _ := metaInt(a.meta, "id")
	return n
}

// ApplyTo leaves the field of view unchanged; apertures act through FOVGrid.
func (a *Aperture) ApplyTo(fov *effects.FieldOfView) (*effects.FieldOfView, error) {
	return fov, nil
}

// Reset drops the cached header and mask.
func (a *Aperture) Reset() {
	a.header.reset()
	a.mask.reset()
}

// FOVGrid merges extra into the aperture meta and returns the header for
// Edges or the mask for Masks. Other kinds yield an empty grid.
func (a *Aperture) FOVGrid(which GridKind, sys *settings.Context, extra map[string]any) (Grid, error) {
	switch which {
	case Edges:
		maps.Copy(a.meta, extra)
		h, err := a.Header(sys)
		return Grid{Header: h}, err
	case Masks:
		maps.Copy(a.meta, extra)
		m, err := a.Mask(sys)
		return Grid{Mask: m}, err
	default:
		return Grid{}, nil
	}
}

// Header resolves meta references against sys, then returns the cached
// header or computes it when the table has x and y columns.
func (a *Aperture) Header(sys *settings.Context) (*raster.Header, error) {
	sys.ResolveMap(a.meta)
	v := a.tbl.Version()
	if a.header.fresh(v) || !a.tbl.Has("x", "y") {
		return a.header.val, nil
	}

	start := time.Now()
	h, err := a.computeHeader()
	observability.ObserveRasterize("header", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("aperture %v header: %w", a.meta["id"], err)
	}
	a.header.store(h, v)
	return h, nil
}

// Mask is like Header for the coverage mask. With no_mask set the cached
// result is nil.
func (a *Aperture) Mask(sys *settings.Context) (*raster.Mask, error) {
	sys.ResolveMap(a.meta)
	v := a.tbl.Version()
	if a.mask.fresh(v) || !a.tbl.Has("x", "y") {
		return a.mask.val, nil
	}

	start := time.Now()
	m, err := a.computeMask()
	observability.ObserveRasterize("mask", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("aperture %v mask: %w", a.meta["id"], err)
	}
	a.mask.store(m, v)
	return m, nil
}

func (a *Aperture) params() (raster.Params, error) {
	var p raster.Params
	scale, err := metaFloat(a.meta, "pixel_scale")
	if err != nil {
		return p, err
	}
	if p.NoMask, err = metaBool(a.meta, "no_mask"); err != nil {
		return p, err
	}
	if p.ID, err = metaInt(a.meta, "id"); err != nil {
		return p, err
	}
	if p.Angle, err = metaFloat(a.meta, "angle"); err != nil {
		return p, err
	}
	if p.ConserveImage, err = metaBool(a.meta, "conserve_image"); err != nil {
		return p, err
	}
	p.PixelScale = scale / arcsecPerDeg
	p.MaxPixels = a.opts.maxPixels
	return p, nil
}

// coords returns the outline in degrees.
func (a *Aperture) coords() ([]float64, []float64, error) {
	xu, _ := a.meta["x_unit"].(string)
	yu, _ := a.meta["y_unit"].(string)
	if xu == "" {
		xu = "arcsec"
	}
	if yu == "" {
		yu = "arcsec"
	}
	x, err := a.tbl.Quantity("x", xu, "deg")
	if err != nil {
		return nil, nil, err
	}
	y, err := a.tbl.Quantity("y", yu, "deg")
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func (a *Aperture) computeHeader() (*raster.Header, error) {
	p, err := a.params()
	if err != nil {
		return nil, err
	}
	x, y, err := a.coords()
	if err != nil {
		return nil, err
	}
	p.NoMask = true
	h, _, err := raster.Rasterize(geometry.VertexSet{X: x, Y: y}, p)
	return h, err
}

func (a *Aperture) computeMask() (*raster.Mask, error) {
	p, err := a.params()
	if err != nil {
		return nil, err
	}
	if p.NoMask {
		return nil, nil
	}
	x, y, err := a.coords()
	if err != nil {
		return nil, err
	}

	var key string
	if a.opts.cache != nil {
		key = keys.MaskKey(a.opts.namespace, x, y, p.PixelScale)
		if m, ok := a.opts.cache.Get(key); ok {
			a.opts.logger.Debug("aperture mask from cache", "id", p.ID, "key", key)
			return m.Clone(), nil
		}
	}

	_, m, err := raster.Rasterize(geometry.VertexSet{X: x, Y: y}, p)
	if err != nil {
		return nil, err
	}
	observability.ObserveMaskPixels(m.Width() * m.Height())
	a.opts.logger.Debug("aperture mask rasterized",
		"id", p.ID,
		"naxis1", m.Width(),
		"naxis2", m.Height(),
		"vertices", len(x))

	if a.opts.cache != nil {
		a.opts.cache.Put(key, m.Clone())
	}
	return m, nil
}
