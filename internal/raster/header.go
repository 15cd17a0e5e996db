// Package raster turns aperture polygons into pixel grids.
package raster

import (
	"errors"
	"fmt"
	"math"
)

// float noise allowed before ceil rounds up to another pixel
const ceilSlack = 1e-9

// MaxAxis bounds NAXIS1 and NAXIS2.
const MaxAxis = math.MaxInt32

var (
	ErrDegenerate = errors.New("degenerate raster geometry")
	ErrTooLarge   = errors.New("raster grid exceeds pixel budget")
)

// Header is the coordinate description of an aperture grid. CRVAL is the
// minimum corner of the polygon extent and CRPIX 0.5 puts it on the outer
// edge of the first (1-based) pixel.
type Header struct {
	Naxis1, Naxis2 int
	Crval1, Crval2 float64
	Crpix1, Crpix2 float64
	Cdelt1, Cdelt2 float64
	Cunit1, Cunit2 string
	Ctype1, Ctype2 string

	Aperture int
	Rot      float64
	ImgCons  bool
}

type Card struct {
	Key   string
	Value any
}

// Cards lists the header as ordered FITS-style key/value pairs.
func (h *Header) Cards() []Card {
	return []Card{
		{"NAXIS", 2},
		{"NAXIS1", h.Naxis1},
		{"NAXIS2", h.Naxis2},
		{"CTYPE1", h.Ctype1},
		{"CTYPE2", h.Ctype2},
		{"CUNIT1", h.Cunit1},
		{"CUNIT2", h.Cunit2},
		{"CRVAL1", h.Crval1},
		{"CRVAL2", h.Crval2},
		{"CRPIX1", h.Crpix1},
		{"CRPIX2", h.Crpix2},
		{"CDELT1", h.Cdelt1},
		{"CDELT2", h.Cdelt2},
		{"APERTURE", h.Aperture},
		{"ROT", h.Rot},
		{"IMG_CONS", h.ImgCons},
	}
}

// Extent returns the world coordinates covered by the grid.
func (h *Header) Extent() (xmin, xmax, ymin, ymax float64) {
	xmin = h.Crval1 - (h.Crpix1-0.5)*h.Cdelt1
	ymin = h.Crval2 - (h.Crpix2-0.5)*h.Cdelt2
	return xmin, xmin + float64(h.Naxis1)*h.Cdelt1, ymin, ymin + float64(h.Naxis2)*h.Cdelt2
}

// HeaderFromXY derives a linear grid header from the extent of x and y, in
// degrees, sampled at pixelScale degrees per pixel.
func HeaderFromXY(x, y []float64, pixelScale float64) (*Header, error) {
	xmin, xmax, ymin, ymax, err := extent(x, y, pixelScale)
	if err != nil {
		return nil, err
	}
	nx, ny, err := axes(xmax-xmin, ymax-ymin, pixelScale)
	if err != nil {
		return nil, err
	}
	return &Header{
		Naxis1: nx,
		Naxis2: ny,
		Crval1: xmin,
		Crval2: ymin,
		Crpix1: 0.5,
		Crpix2: 0.5,
		Cdelt1: pixelScale,
		Cdelt2: pixelScale,
		Cunit1: "deg",
		Cunit2: "deg",
		Ctype1: "LINEAR",
		Ctype2: "LINEAR",
	}, nil
}

func extent(x, y []float64, pixelScale float64) (xmin, xmax, ymin, ymax float64, err error) {
	if len(x) == 0 || len(x) != len(y) {
		return 0, 0, 0, 0, fmt.Errorf("%w: %d x and %d y coordinates", ErrDegenerate, len(x), len(y))
	}
	if !(pixelScale > 0) || math.IsInf(pixelScale, 0) {
		return 0, 0, 0, 0, fmt.Errorf("%w: pixel scale %v", ErrDegenerate, pixelScale)
	}
	xmin, xmax = x[0], x[0]
	ymin, ymax = y[0], y[0]
	for i := 1; i < len(x); i++ {
		xmin = math.Min(xmin, x[i])
		xmax = math.Max(xmax, x[i])
		ymin = math.Min(ymin, y[i])
		ymax = math.Max(ymax, y[i])
	}
	if xmax == xmin || ymax == ymin {
		return 0, 0, 0, 0, fmt.Errorf("%w: zero extent", ErrDegenerate)
	}
	return xmin, xmax, ymin, ymax, nil
}

func axes(w, h, scale float64) (nx, ny int, err error) {
	if nx, err = pixels(w, scale); err != nil {
		return 0, 0, err
	}
	if ny, err = pixels(h, scale); err != nil {
		return 0, 0, err
	}
	return nx, ny, nil
}

func pixels(width, scale float64) (int, error) {
	n := math.Ceil(width/scale - ceilSlack)
	if math.IsNaN(n) || n < 1 || n > MaxAxis {
		return 0, fmt.Errorf("%w: %g pixels per axis", ErrDegenerate, n)
	}
	return int(n), nil
}
