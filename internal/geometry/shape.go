// Package geometry builds aperture outlines as vertex sets on the sky plane.
package geometry

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrConfiguration = errors.New("geometry configuration")
	ErrUnknownShape  = errors.New("unknown shape")
)

// ConfigurationError reports a polygon request that cannot produce a valid outline.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "geometry configuration: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnknownShapeError names a shape token that matches no known shape.
type UnknownShapeError struct {
	Token string
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown shape %q", e.Token)
}

func (e *UnknownShapeError) Is(target error) bool { return target == ErrUnknownShape }

type ShapeKind int

const (
	KindRound ShapeKind = iota
	KindRect
	KindHex
	KindOct
	KindNGon
	KindFileRef
)

func (k ShapeKind) String() string {
	switch k {
	case KindRound:
		return "round"
	case KindRect:
		return "rect"
	case KindHex:
		return "hex"
	case KindOct:
		return "oct"
	case KindNGon:
		return "ngon"
	case KindFileRef:
		return "file"
	default:
		return "invalid"
	}
}

// Shape is an aperture outline descriptor. The zero value is Round.
type Shape struct {
	Kind ShapeKind
	N    int
	Path string
}

var (
	Round = Shape{Kind: KindRound}
	Rect  = Shape{Kind: KindRect}
	Hex   = Shape{Kind: KindHex}
	Oct   = Shape{Kind: KindOct}
)

func NGon(n int) Shape { return Shape{Kind: KindNGon, N: n} }

func FileRef(path string) Shape { return Shape{Kind: KindFileRef, Path: path} }

// String returns the token that ParseShape maps back to s.
func (s Shape) String() string {
	switch s.Kind {
	case KindNGon:
		return strconv.Itoa(s.N)
	case KindFileRef:
		return s.Path
	default:
		return s.Kind.String()
	}
}

// Corners resolves the number of polygon corners for s. nRound is used for Round.
func (s Shape) Corners(nRound int) int {
	switch s.Kind {
	case KindRound:
		return nRound
	case KindRect:
		return 4
	case KindHex:
		return 6
	case KindOct:
		return 8
	case KindNGon:
		return s.N
	default:
		return 0
	}
}

// ParseShape maps a table token onto a Shape. Numeric tokens are truncated
// to an integer corner count, so "6" and "6.0" both give NGon(6).
func ParseShape(token string) (Shape, error) {
	t := strings.TrimSpace(token)
	switch strings.ToLower(t) {
	case "round":
		return Round, nil
	case "rect":
		return Rect, nil
	case "hex":
		return Hex, nil
	case "oct":
		return Oct, nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return NGon(int(f)), nil
	}
	if t != "" && (filepath.Ext(t) != "" || strings.ContainsAny(t, `/\`)) {
		return FileRef(t), nil
	}
	return Shape{}, &UnknownShapeError{Token: token}
}

// ShapeOf accepts the loose forms found in table cells: strings, Shape values and numbers.
func ShapeOf(v any) (Shape, error) {
	switch t := v.(type) {
	case Shape:
		return t, nil
	case string:
		return ParseShape(t)
	case int:
		return NGon(t), nil
	case int64:
		return NGon(int(t)), nil
	case float64:
		return NGon(int(t)), nil
	default:
		return Shape{}, &UnknownShapeError{Token: fmt.Sprint(v)}
	}
}
