package aperture

import (
	"fmt"
	"maps"

	"github.com/mohammed-shakir/aperture-engine/internal/effects"
	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

func init() { RegisterFactories() }

// RegisterFactories (re)binds the ApertureMask and ApertureList effect
// classes. opts are applied to every aperture built from a descriptor.
//
// The outline comes from kwargs "table" (*table.Table) or "array_dict"
// (a column map as decoded from JSON). Remaining kwargs become metadata.
func RegisterFactories(opts ...Option) {
	effects.Register(string(effects.KindApertureMask), func(name string, kwargs map[string]any) (effects.Effect, error) {
		tbl, kw, err := tableArg(kwargs)
		if err != nil {
			return nil, err
		}
		kw["name"] = name
		return New(tbl, kw, opts...), nil
	})
	effects.Register(string(effects.KindApertureList), func(name string, kwargs map[string]any) (effects.Effect, error) {
		tbl, kw, err := tableArg(kwargs)
		if err != nil {
			return nil, err
		}
		kw["name"] = name
		l, err := NewList(tbl, kw, opts...)
		if err != nil {
			return nil, err
		}
		return l, nil
	})
}

func tableArg(kwargs map[string]any) (*table.Table, map[string]any, error) {
	kw := maps.Clone(kwargs)
	if kw == nil {
		kw = map[string]any{}
	}
	var tbl *table.Table
	if v, ok := kw["table"]; ok {
		t, ok := v.(*table.Table)
		if !ok {
			return nil, nil, &effects.TypeMismatchError{Op: "aperture kwargs table", Want: "*table.Table", Got: fmt.Sprintf("%T", v)}
		}
		tbl = t
		delete(kw, "table")
	}
	if v, ok := kw["array_dict"]; ok && tbl == nil {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil, &effects.TypeMismatchError{Op: "aperture kwargs array_dict", Want: "map[string]any", Got: fmt.Sprintf("%T", v)}
		}
		t, err := table.FromMap(m)
		if err != nil {
			return nil, nil, fmt.Errorf("array_dict: %w", err)
		}
		tbl = t
	}
	delete(kw, "array_dict")
	return tbl, kw, nil
}
