package effects

import (
	"errors"
	"fmt"
	"maps"
	"sort"
)

var ErrUnknownClass = errors.New("unknown effect class")

// Descriptor is the declarative form of an effect inside an optical element.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Class       string         `json:"class"`
	Kwargs      map[string]any `json:"kwargs,omitempty"`
}

// Factory builds an effect from its name and merged keyword arguments.
type Factory func(name string, kwargs map[string]any) (Effect, error)

var reg = map[string]Factory{}

func Register(class string, f Factory) {
	reg[class] = f
}

// Classes lists registered classes in sorted order.
func Classes() []string {
	out := make([]string, 0, len(reg))
	for k := range reg {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New builds the effect described by d. props are shared element properties;
// d.Kwargs override them.
func New(d Descriptor, props map[string]any) (Effect, error) {
	f, ok := reg[d.Class]
	if !ok {
		return nil, fmt.Errorf("%w %q for effect %q", ErrUnknownClass, d.Class, d.Name)
	}
	kw := make(map[string]any, len(props)+len(d.Kwargs))
	maps.Copy(kw, props)
	maps.Copy(kw, d.Kwargs)
	e, err := f(d.Name, kw)
	if err != nil {
		return nil, fmt.Errorf("effect %q (%s): %w", d.Name, d.Class, err)
	}
	return e, nil
}

func baseFactory(kind Kind, z ZOrder) Factory {
	return func(name string, kwargs map[string]any) (Effect, error) {
		b := NewBase(kind, name, kwargs)
		if _, ok := b.meta["z_order"]; !ok {
			b.meta["z_order"] = []int(z)
		}
		if _, err := ParseZOrder(b.meta["z_order"]); err != nil {
			return nil, err
		}
		return b, nil
	}
}

func init() {
	Register(string(KindTERCurve), baseFactory(KindTERCurve, Z(10, 110, 510)))
	Register(string(KindSurfaceList), baseFactory(KindSurfaceList, Z(20, 120, 520)))
}
