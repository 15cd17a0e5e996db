// Package optics groups effects into optical elements, the sections of an
// optical train (telescope, relay optics, instrument, detector).
package optics

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/mohammed-shakir/aperture-engine/internal/effects"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
)

// Descriptor is the declarative form of an element. Fields other than
// properties and effects end up in the element meta.
type Descriptor struct {
	Name       string               `json:"name"`
	Properties map[string]any       `json:"properties,omitempty"`
	Effects    []effects.Descriptor `json:"effects,omitempty"`
	Extra      map[string]any       `json:"-"`
}

// UnmarshalJSON keeps unknown top level keys in Extra.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	type plain Descriptor
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range []string{"name", "properties", "effects"} {
		delete(all, k)
	}
	*d = Descriptor(p)
	if len(all) > 0 {
		d.Extra = all
	}
	return nil
}

// Element is an ordered collection of effects plus the properties shared
// between them. Insertion order is preserved by every query.
type Element struct {
	meta       map[string]any
	properties map[string]any
	effects    []effects.Effect
}

func New(name string, meta map[string]any) *Element {
	m := map[string]any{"name": "<empty>"}
	maps.Copy(m, meta)
	if name != "" {
		m["name"] = name
	}
	return &Element{meta: m, properties: map[string]any{}}
}

// FromDescriptor builds an element and its effects. Property and effect
// kwargs values that name a meta key, or that are !-references known to
// sys, are substituted before the effects are constructed.
func FromDescriptor(d Descriptor, sys *settings.Context) (*Element, error) {
	e := New(d.Name, d.Extra)
	e.properties = clean(d.Properties, e.meta, sys)
	for i, ed := range d.Effects {
		ed.Kwargs = clean(ed.Kwargs, e.meta, sys)
		eff, err := effects.New(ed, e.properties)
		if err != nil {
			return nil, fmt.Errorf("element %q effect %d: %w", d.Name, i, err)
		}
		if err := e.Add(eff); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func clean(in, meta map[string]any, sys *settings.Context) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if s, ok := v.(string); ok {
			if mv, ok := meta[s]; ok {
				v = mv
			}
		}
		out[k] = sys.Resolve(v)
	}
	return out
}

func (e *Element) Name() string {
	s, _ := e.meta["name"].(string)
	return s
}

func (e *Element) Meta() map[string]any { return e.meta }

func (e *Element) Properties() map[string]any { return e.properties }

// Add appends eff. Nil effects, including nil pointers wrapped in the
// interface, are rejected.
func (e *Element) Add(eff effects.Effect) error {
	if eff == nil {
		return &effects.TypeMismatchError{Op: "element add", Want: "effects.Effect", Got: "nil"}
	}
	if v := reflect.ValueOf(eff); isNilable(v.Kind()) && v.IsNil() {
		return &effects.TypeMismatchError{Op: "element add", Want: "effects.Effect", Got: fmt.Sprintf("%T(nil)", eff)}
	}
	e.effects = append(e.effects, eff)
	return nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return true
	}
	return false
}

// Effects returns the effects in insertion order.
func (e *Element) Effects() []effects.Effect {
	out := make([]effects.Effect, len(e.effects))
	copy(out, e.effects)
	return out
}

func (e *Element) Len() int { return len(e.effects) }

// GetAll returns the effects of the given kinds.
func (e *Element) GetAll(kinds ...effects.Kind) []effects.Effect {
	var out []effects.Effect
	for _, eff := range e.effects {
		for _, k := range kinds {
			if eff.Kind() == k {
				out = append(out, eff)
				break
			}
		}
	}
	return out
}

// ZOrderEffects returns the effects with at least one z-order marker in r.
// Effects with no marker never match.
func (e *Element) ZOrderEffects(r effects.ZRange) []effects.Effect {
	var out []effects.Effect
	for _, eff := range e.effects {
		if eff.ZOrder().Within(r) {
			out = append(out, eff)
		}
	}
	return out
}

// TERList returns the transmission/emission/reflection effects.
func (e *Element) TERList() []effects.Effect {
	return e.GetAll(effects.KindSurfaceList, effects.KindTERCurve)
}

// MaskList returns the aperture effects, single masks and lists alike.
func (e *Element) MaskList() []effects.Effect {
	return e.GetAll(effects.KindApertureMask, effects.KindApertureList)
}

func (e *Element) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nOpticalElement : %q contains %d Effects: \n", e.Name(), len(e.effects))
	for i, eff := range e.effects {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s: %q", i, eff.Kind(), eff.Name())
	}
	return b.String()
}
