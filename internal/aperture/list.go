package aperture

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mohammed-shakir/aperture-engine/internal/effects"
	"github.com/mohammed-shakir/aperture-engine/internal/geometry"
	"github.com/mohammed-shakir/aperture-engine/internal/raster"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

// RequiredColumns must be present in every aperture list table.
var RequiredColumns = []string{"id", "left", "right", "top", "bottom", "angle", "conserve_image", "shape"}

// Row is one aperture of a list. Box edges are arcsec, Angle and Offset degrees.
type Row struct {
	ID            int
	Box           geometry.Box
	Angle         float64
	ConserveImage bool
	Shape         geometry.Shape
	Offset        float64
}

func defaultListMeta() map[string]any {
	return map[string]any{
		"pixel_scale":     "!INST.pixel_scale",
		"n_round_corners": geometry.DefaultRoundCorners,
		"no_mask":         false,
		"z_order":         []int{81, 281},
	}
}

// List is an ordered set of apertures, e.g. IFU slices or MOS fibres.
// Apertures are materialized fresh on every call.
type List struct {
	rows []Row
	meta map[string]any
	opts options
}

var _ effects.Effect = (*List)(nil)

// NewList validates and decodes tbl. A nil table gives an empty list.
func NewList(tbl *table.Table, kwargs map[string]any, opts ...Option) (*List, error) {
	var rows []Row
	if tbl != nil {
		if missing := tbl.Missing(RequiredColumns...); len(missing) > 0 {
			return nil, &SchemaError{Missing: missing}
		}
		var err error
		if rows, err = decodeRows(tbl); err != nil {
			return nil, err
		}
	}
	return newList(rows, tbl, kwargs, opts), nil
}

// NewListFromRows builds a list from already typed rows.
func NewListFromRows(rows []Row, kwargs map[string]any, opts ...Option) *List {
	return newList(slices.Clone(rows), nil, kwargs, opts)
}

func newList(rows []Row, tbl *table.Table, kwargs map[string]any, opts []Option) *List {
	meta := defaultListMeta()
	if tbl != nil {
		maps.Copy(meta, tbl.Meta)
	}
	maps.Copy(meta, kwargs)
	return &List{rows: rows, meta: meta, opts: buildOptions(opts)}
}

func decodeRows(tbl *table.Table) ([]Row, error) {
	hasOffset := tbl.Has("offset")
	rows := make([]Row, 0, tbl.Len())
	for i := range tbl.Len() {
		r, err := tbl.Row(i)
		if err != nil {
			return nil, err
		}
		var row Row
		var errs [8]error
		row.ID, errs[0] = table.Int(r["id"])
		row.Box.Left, errs[1] = table.Float(r["left"])
		row.Box.Right, errs[2] = table.Float(r["right"])
		row.Box.Top, errs[3] = table.Float(r["top"])
		row.Box.Bottom, errs[4] = table.Float(r["bottom"])
		row.Angle, errs[5] = table.Float(r["angle"])
		row.ConserveImage, errs[6] = table.Bool(r["conserve_image"])
		row.Shape, errs[7] = geometry.ShapeOf(r["shape"])
		for j, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("aperture list row %d, column %s: %w", i, RequiredColumns[j], err)
			}
		}
		if hasOffset && r["offset"] != nil {
			if row.Offset, err = table.Float(r["offset"]); err != nil {
				return nil, fmt.Errorf("aperture list row %d, column offset: %w", i, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *List) Len() int { return len(l.rows) }

// Rows returns a copy of the backing rows.
func (l *List) Rows() []Row { return slices.Clone(l.rows) }

func (l *List) Meta() map[string]any { return l.meta }

func (l *List) Kind() effects.Kind { return effects.KindApertureList }

func (l *List) Name() string {
	if s, ok := l.meta["name"].(string); ok && s != "" {
		return s
	}
	return "aperture list"
}

func (l *List) ZOrder() effects.ZOrder {
	z, _ := effects.ParseZOrder(l.meta["z_order"])
	return z
}

func (l *List) ApplyTo(fov *effects.FieldOfView) (*effects.FieldOfView, error) {
	return fov, nil
}

// Apertures materializes every row.
func (l *List) Apertures(sys *settings.Context) ([]*Aperture, error) {
	ids := make([]int, len(l.rows))
	for i := range ids {
		ids[i] = i
	}
	return l.GetApertures(sys, ids...)
}

// At returns the aperture for row i.
func (l *List) At(sys *settings.Context, i int) (*Aperture, error) {
	aps, err := l.GetApertures(sys, i)
	if err != nil {
		return nil, err
	}
	return aps[0], nil
}

// GetApertures builds the polygon of each requested row and wraps it in an
// Aperture inheriting the row attributes and the list's pixel scale and
// masking switch.
func (l *List) GetApertures(sys *settings.Context, rowIDs ...int) ([]*Aperture, error) {
	sys.ResolveMap(l.meta)
	nRound, err := metaInt(l.meta, "n_round_corners")
	if err != nil {
		return nil, err
	}
	noMask, err := metaBool(l.meta, "no_mask")
	if err != nil {
		return nil, err
	}

	out := make([]*Aperture, 0, len(rowIDs))
	for _, i := range rowIDs {
		if i < 0 || i >= len(l.rows) {
			return nil, fmt.Errorf("aperture list: row %d out of range [0,%d)", i, len(l.rows))
		}
		row := l.rows[i]
		vs, err := geometry.BuildPolygon(row.Box, row.Angle, row.Shape,
			geometry.WithRoundCorners(nRound),
			geometry.WithOffset(row.Offset),
			geometry.WithResolver(l.opts.resolver),
		)
		if err != nil {
			return nil, fmt.Errorf("aperture list row %d (id %d): %w", i, row.ID, err)
		}
		tbl, err := table.FromMap(map[string]any{"x": vs.X, "y": vs.Y})
		if err != nil {
			return nil, err
		}
		out = append(out, New(tbl, map[string]any{
			"id":             row.ID,
			"angle":          row.Angle,
			"shape":          row.Shape.String(),
			"conserve_image": row.ConserveImage,
			"no_mask":        noMask,
			"pixel_scale":    l.meta["pixel_scale"],
			"x_unit":         "arcsec",
			"y_unit":         "arcsec",
			"angle_unit":     "deg",
		}, l.opts.list()...))
	}
	return out, nil
}

// ListGrid holds FOVGrid results: Edges for the Edges kind, Masks keyed
// by aperture id for the Masks kind.
type ListGrid struct {
	Edges []*raster.Header
	Masks map[int]*raster.Mask
}

// FOVGrid merges the list meta and extra into every aperture before
// computing. Duplicate ids in Masks overwrite each other.
func (l *List) FOVGrid(which GridKind, sys *settings.Context, extra map[string]any) (ListGrid, error) {
	if which != Edges && which != Masks {
		return ListGrid{}, nil
	}
	params := make(map[string]any, len(l.meta)+len(extra))
	for k, v := range l.meta {
		if k == "z_order" || k == "name" {
			continue
		}
		params[k] = v
	}
	maps.Copy(params, extra)

	aps, err := l.Apertures(sys)
	if err != nil {
		return ListGrid{}, err
	}

	var g ListGrid
	if which == Masks {
		g.Masks = make(map[int]*raster.Mask, len(aps))
	}
	for _, ap := range aps {
		r, err := ap.FOVGrid(which, sys, params)
		if err != nil {
			return ListGrid{}, err
		}
		if which == Edges {
			g.Edges = append(g.Edges, r.Header)
		} else {
			g.Masks[ap.ID()] = r.Mask
		}
	}
	return g, nil
}

// Concat appends other's rows to l in place and returns l. Only lists can
// be concatenated.
func (l *List) Concat(other effects.Effect) (*List, error) {
	o, ok := other.(*List)
	if !ok || o == nil {
		return nil, &effects.TypeMismatchError{Op: "aperture list concat", Want: "*aperture.List", Got: fmt.Sprintf("%T", other)}
	}
	l.rows = append(l.rows, o.rows...)
	return l, nil
}
