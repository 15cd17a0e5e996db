package raster

import (
	"fmt"

	"github.com/mohammed-shakir/aperture-engine/internal/geometry"
)

// DefaultMaxPixels caps the mask size when Params.MaxPixels is unset.
const DefaultMaxPixels = 1 << 26

// Params carries the aperture attributes stamped into the header.
type Params struct {
	PixelScale    float64 // degrees per pixel
	NoMask        bool
	ID            int
	Angle         float64
	ConserveImage bool
	MaxPixels     int // mask budget, DefaultMaxPixels when <= 0
}

func (p Params) budget() int {
	if p.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return p.MaxPixels
}

// Rasterize derives the header for vs (in degrees) and, unless masking is
// disabled, its coverage mask. With NoMask the mask is nil and the outline
// may have fewer than three vertices.
func Rasterize(vs geometry.VertexSet, p Params) (*Header, *Mask, error) {
	h, err := HeaderFromXY(vs.X, vs.Y, p.PixelScale)
	if err != nil {
		return nil, nil, err
	}
	h.Aperture = p.ID
	h.Rot = p.Angle
	h.ImgCons = p.ConserveImage
	if p.NoMask {
		return h, nil, nil
	}
	m, err := maskFromXY(vs.X, vs.Y, p.PixelScale, p.budget())
	if err != nil {
		return nil, nil, err
	}
	return h, m, nil
}

// MaskFromXY samples the closed polygon (x, y) at pixel centres of a grid
// covering its extent. Points exactly on an edge may fall either way.
// Grids larger than DefaultMaxPixels fail with ErrTooLarge.
func MaskFromXY(x, y []float64, pixelScale float64) (*Mask, error) {
	return maskFromXY(x, y, pixelScale, DefaultMaxPixels)
}

func maskFromXY(x, y []float64, pixelScale float64, maxPixels int) (*Mask, error) {
	xmin, xmax, ymin, ymax, err := extent(x, y, pixelScale)
	if err != nil {
		return nil, err
	}
	if len(x) < 3 {
		return nil, fmt.Errorf("%w: polygon has %d vertices", ErrDegenerate, len(x))
	}
	nx, ny, err := axes(xmax-xmin, ymax-ymin, pixelScale)
	if err != nil {
		return nil, err
	}
	if float64(nx)*float64(ny) > float64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d grid, limit %d", ErrTooLarge, nx, ny, maxPixels)
	}
	m := NewMask(nx, ny)

	vs := geometry.VertexSet{X: x, Y: y}
	for j := range ny {
		py := ymin + (float64(j)+0.5)*pixelScale
		for i := range nx {
			px := xmin + (float64(i)+0.5)*pixelScale
			if Contains(vs, px, py) {
				m.data[j*nx+i] = true
			}
		}
	}
	return m, nil
}

// Contains is a crossing-number test against the implicitly closed polygon vs.
func Contains(vs geometry.VertexSet, x, y float64) bool {
	n := vs.Len()
	if n < 3 {
		return false
	}
	in := false
	j := n - 1
	for i := range n {
		xi, yi := vs.X[i], vs.Y[i]
		xj, yj := vs.X[j], vs.Y[j]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
		j = i
	}
	return in
}
