package geometry

import (
	"fmt"
	"math"
)

const DefaultRoundCorners = 32

const deg2rad = math.Pi / 180

// Box is an aperture bounding box in arcsec offsets from the reference point.
type Box struct {
	Left, Right float64
	Top, Bottom float64
}

func (b Box) Center() (float64, float64) {
	return 0.5 * (b.Right + b.Left), 0.5 * (b.Top + b.Bottom)
}

func (b Box) HalfExtents() (float64, float64) {
	return 0.5 * (b.Right - b.Left), 0.5 * (b.Top - b.Bottom)
}

// VertexSet is an implicitly closed polygon: the first vertex is not repeated.
type VertexSet struct {
	X []float64
	Y []float64
}

func (v VertexSet) Len() int { return len(v.X) }

// Mean returns the average of the vertices.
func (v VertexSet) Mean() (float64, float64) {
	if len(v.X) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for i := range v.X {
		sx += v.X[i]
		sy += v.Y[i]
	}
	n := float64(len(v.X))
	return sx / n, sy / n
}

// Bounds returns the min and max of each axis.
func (v VertexSet) Bounds() (xmin, xmax, ymin, ymax float64) {
	if len(v.X) == 0 {
		return 0, 0, 0, 0
	}
	xmin, xmax = v.X[0], v.X[0]
	ymin, ymax = v.Y[0], v.Y[0]
	for i := 1; i < len(v.X); i++ {
		xmin = math.Min(xmin, v.X[i])
		xmax = math.Max(xmax, v.X[i])
		ymin = math.Min(ymin, v.Y[i])
		ymax = math.Max(ymax, v.Y[i])
	}
	return xmin, xmax, ymin, ymax
}

// Resolver loads the outline referenced by a FileRef shape.
type Resolver interface {
	ResolvePolygon(path string) (VertexSet, error)
}

type ResolverFunc func(path string) (VertexSet, error)

func (f ResolverFunc) ResolvePolygon(path string) (VertexSet, error) { return f(path) }

type buildOptions struct {
	nRound   int
	offset   float64
	resolver Resolver
}

type Option func(*buildOptions)

// WithRoundCorners sets the corner count used to approximate a Round shape.
func WithRoundCorners(n int) Option {
	return func(o *buildOptions) { o.nRound = n }
}

// WithOffset sets the angle in degrees at which the first corner is placed.
func WithOffset(deg float64) Option {
	return func(o *buildOptions) { o.offset = deg }
}

func WithResolver(r Resolver) Option {
	return func(o *buildOptions) { o.resolver = r }
}

// BuildPolygon places the corners of shape on the ellipse inscribed in box
// and rotates them by angle degrees (counter-clockwise) about their mean.
//
// Rect scales the ellipse by sqrt(2) and shifts the first corner by 45 deg so
// the four corners land on the box corners. NGon(4) keeps the unscaled
// ellipse and therefore yields a diamond of half the area.
func BuildPolygon(box Box, angle float64, shape Shape, opts ...Option) (VertexSet, error) {
	o := buildOptions{nRound: DefaultRoundCorners}
	for _, f := range opts {
		f(&o)
	}

	if shape.Kind == KindFileRef {
		return fitFilePolygon(box, angle, shape, o.resolver)
	}

	n := shape.Corners(o.nRound)
	if n < 3 {
		return VertexSet{}, &ConfigurationError{
			Reason: fmt.Sprintf("shape %s resolves to %d corners, need at least 3", shape, n),
		}
	}

	x0, y0 := box.Center()
	dx, dy := box.HalfExtents()
	offset := o.offset
	if shape.Kind == KindRect {
		dx *= math.Sqrt2
		dy *= math.Sqrt2
		offset += 45
	}

	vs := PointsOnEllipse(n, x0, y0, dx, dy, offset)
	if angle != 0 {
		cx, cy := vs.Mean()
		vs = Rotate(vs, cx, cy, angle)
	}
	return vs, nil
}

// PointsOnEllipse returns n points every 360/n degrees starting at offset.
func PointsOnEllipse(n int, x0, y0, dx, dy, offset float64) VertexSet {
	if n <= 0 {
		return VertexSet{}
	}
	vs := VertexSet{X: make([]float64, n), Y: make([]float64, n)}
	step := 360 / float64(n)
	for i := range n {
		theta := (float64(i)*step + offset) * deg2rad
		vs.X[i] = x0 + dx*math.Cos(theta)
		vs.Y[i] = y0 + dy*math.Sin(theta)
	}
	return vs
}

// Rotate turns vs by angle degrees counter-clockwise about (x0, y0).
func Rotate(vs VertexSet, x0, y0, angle float64) VertexSet {
	a := angle * deg2rad
	c, s := math.Cos(a), math.Sin(a)
	out := VertexSet{X: make([]float64, len(vs.X)), Y: make([]float64, len(vs.Y))}
	for i := range vs.X {
		ddx, ddy := vs.X[i]-x0, vs.Y[i]-y0
		out.X[i] = x0 + ddx*c - ddy*s
		out.Y[i] = y0 + ddx*s + ddy*c
	}
	return out
}

// fitFilePolygon maps the extent of a resolved outline onto box.
func fitFilePolygon(box Box, angle float64, shape Shape, r Resolver) (VertexSet, error) {
	if r == nil {
		return VertexSet{}, &ConfigurationError{Reason: fmt.Sprintf("no resolver for polygon file %q", shape.Path)}
	}
	src, err := r.ResolvePolygon(shape.Path)
	if err != nil {
		return VertexSet{}, fmt.Errorf("resolve polygon %q: %w", shape.Path, err)
	}
	if src.Len() < 3 || len(src.Y) != len(src.X) {
		return VertexSet{}, &ConfigurationError{
			Reason: fmt.Sprintf("polygon file %q has %d vertices, need at least 3", shape.Path, src.Len()),
		}
	}

	xmin, xmax, ymin, ymax := src.Bounds()
	if xmax == xmin || ymax == ymin {
		return VertexSet{}, &ConfigurationError{Reason: fmt.Sprintf("polygon file %q has zero extent", shape.Path)}
	}
	sx := (box.Right - box.Left) / (xmax - xmin)
	sy := (box.Top - box.Bottom) / (ymax - ymin)

	vs := VertexSet{X: make([]float64, src.Len()), Y: make([]float64, src.Len())}
	for i := range src.X {
		vs.X[i] = box.Left + (src.X[i]-xmin)*sx
		vs.Y[i] = box.Bottom + (src.Y[i]-ymin)*sy
	}
	if angle != 0 {
		cx, cy := vs.Mean()
		vs = Rotate(vs, cx, cy, angle)
	}
	return vs, nil
}
