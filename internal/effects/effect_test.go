package effects

import (
	"errors"
	"reflect"
	"testing"
)

func TestZOrder_WithinAnyStage(t *testing.T) {
	cases := []struct {
		z    ZOrder
		r    ZRange
		want bool
	}{
		{Z(80), ZLevel(80), true},
		{Z(80, 280), ZLevel(80), true},
		{Z(281), ZLevel(80), false},
		{Z(179), ZLevel(80), true},
		{Z(180), ZLevel(80), false},
		{Z(600), DefaultZRange, true},
		{Z(601, 700), DefaultZRange, false},
		{nil, DefaultZRange, false},
		{Z(5, 15), ZBetween(10, 20), true},
	}
	for _, c := range cases {
		if got := c.z.Within(c.r); got != c.want {
			t.Fatalf("%v within %+v = %v want %v", c.z, c.r, got, c.want)
		}
	}
}

func TestParseZOrder(t *testing.T) {
	cases := []struct {
		in   any
		want ZOrder
	}{
		{nil, nil},
		{80, ZOrder{80}},
		{[]int{81, 281}, ZOrder{81, 281}},
		{[]any{10.0, "110"}, ZOrder{10, 110}},
	}
	for _, c := range cases {
		got, err := ParseZOrder(c.in)
		if err != nil {
			t.Fatalf("ParseZOrder(%v): %v", c.in, err)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseZOrder(%v) = %v want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseZOrder([]any{"high"}); err == nil {
		t.Fatalf("expected error for non-integer stage")
	}
}

func TestNew_RegisteredClasses(t *testing.T) {
	e, err := New(Descriptor{Name: "mirror", Class: "TERCurve"}, map[string]any{"temperature": 7.0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.Kind() != KindTERCurve || e.Name() != "mirror" {
		t.Fatalf("got %s %q", e.Kind(), e.Name())
	}
	if !reflect.DeepEqual(e.ZOrder(), ZOrder{10, 110, 510}) {
		t.Fatalf("z_order = %v", e.ZOrder())
	}
	if e.Meta()["temperature"] != 7.0 {
		t.Fatalf("element properties not merged: %v", e.Meta())
	}

	e, err = New(Descriptor{Name: "m1", Class: "SurfaceList", Kwargs: map[string]any{"z_order": 42}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !reflect.DeepEqual(e.ZOrder(), ZOrder{42}) {
		t.Fatalf("kwargs z_order not applied: %v", e.ZOrder())
	}
}

func TestNew_UnknownClass(t *testing.T) {
	_, err := New(Descriptor{Name: "x", Class: "Quantum"}, nil)
	if !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestBase_ApplyToPassesThrough(t *testing.T) {
	b := NewBase(KindTERCurve, "", nil)
	fov := &FieldOfView{Meta: map[string]any{"k": 1}}
	got, err := b.ApplyTo(fov)
	if err != nil || got != fov {
		t.Fatalf("ApplyTo changed the field of view: %v %v", got, err)
	}
	if b.Name() != "TERCurve" || b.ZOrder() != nil {
		t.Fatalf("defaults: %q %v", b.Name(), b.ZOrder())
	}
}
