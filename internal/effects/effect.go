// Package effects defines what an optical effect is and how effects are
// selected by kind and pipeline stage.
package effects

import (
	"errors"
	"fmt"
	"maps"

	"github.com/mohammed-shakir/aperture-engine/internal/raster"
)

var ErrTypeMismatch = errors.New("type mismatch")

// TypeMismatchError reports an operation that received the wrong kind of value.
type TypeMismatchError struct {
	Op   string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Op, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

type Kind string

const (
	KindApertureMask Kind = "ApertureMask"
	KindApertureList Kind = "ApertureList"
	KindTERCurve     Kind = "TERCurve"
	KindSurfaceList  Kind = "SurfaceList"
)

// FieldOfView is the on-sky window an effect acts on.
type FieldOfView struct {
	Header *raster.Header
	Meta   map[string]any
}

type Effect interface {
	Name() string
	Kind() Kind
	// ZOrder lists the pipeline stages the effect takes part in; nil means none.
	ZOrder() ZOrder
	Meta() map[string]any
	ApplyTo(fov *FieldOfView) (*FieldOfView, error)
}

// Base is an effect that only carries identity and metadata. Its z-order
// lives in Meta()["z_order"] so keyword overrides take effect.
type Base struct {
	name string
	kind Kind
	meta map[string]any
}

var _ Effect = (*Base)(nil)

func NewBase(kind Kind, name string, meta map[string]any) *Base {
	m := make(map[string]any, len(meta)+1)
	maps.Copy(m, meta)
	if name == "" {
		name = string(kind)
	}
	return &Base{name: name, kind: kind, meta: m}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Kind() Kind { return b.kind }

func (b *Base) Meta() map[string]any { return b.meta }

func (b *Base) ZOrder() ZOrder {
	z, _ := ParseZOrder(b.meta["z_order"])
	return z
}

// ApplyTo passes the field of view through unchanged.
func (b *Base) ApplyTo(fov *FieldOfView) (*FieldOfView, error) { return fov, nil }

func (b *Base) String() string {
	return fmt.Sprintf("%s: %q", b.kind, b.name)
}
