package table

import (
	"math"
	"reflect"
	"testing"
)

func TestFromMap_SplitsColumnsAndMeta(t *testing.T) {
	tbl, err := FromMap(map[string]any{
		"x":              []float64{-1, 1, 1, -1},
		"y":              []float64{-1, -1, 1, 1},
		"id":             3,
		"conserve_image": false,
		"x_unit":         "arcsec",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("len=%d want 4", tbl.Len())
	}
	if !reflect.DeepEqual(tbl.ColNames(), []string{"x", "y"}) {
		t.Fatalf("cols = %v", tbl.ColNames())
	}
	if tbl.Meta["id"] != 3 || tbl.Meta["conserve_image"] != false || tbl.Meta["x_unit"] != "arcsec" {
		t.Fatalf("meta = %v", tbl.Meta)
	}
}

func TestFromMap_RaggedColumns(t *testing.T) {
	_, err := FromMap(map[string]any{"x": []float64{1, 2}, "y": []float64{1}})
	if err == nil {
		t.Fatalf("expected error for ragged columns")
	}
}

func TestMissing_PreservesArgumentOrder(t *testing.T) {
	tbl, _ := FromMap(map[string]any{"id": []int{1}, "left": []float64{0}})
	got := tbl.Missing("id", "right", "left", "top")
	if !reflect.DeepEqual(got, []string{"right", "top"}) {
		t.Fatalf("missing = %v", got)
	}
	if tbl.Has("id", "top") || !tbl.Has("left") {
		t.Fatalf("Has disagrees with Missing")
	}
}

func TestVersion_TrackedMutatorsOnly(t *testing.T) {
	tbl, _ := FromMap(map[string]any{"x": []float64{1, 2}})
	v0 := tbl.Version()

	tbl.Column("x")[0] = 5.0
	if tbl.Version() != v0 {
		t.Fatalf("raw column write must not bump version")
	}
	if err := tbl.Set(1, "x", 7.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v1 := tbl.Version()
	if v1 == v0 {
		t.Fatalf("Set must bump version")
	}
	if err := tbl.AppendRow(map[string]any{"x": 9.0}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if tbl.Version() == v1 || tbl.Len() != 3 {
		t.Fatalf("AppendRow must bump version and length")
	}
	if err := tbl.AppendRow(map[string]any{"nope": 1}); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestAppendTable_OuterJoin(t *testing.T) {
	a, _ := FromRows([]string{"id", "shape"}, []map[string]any{{"id": 1, "shape": "rect"}})
	b, _ := FromRows([]string{"id", "offset"}, []map[string]any{{"id": 2, "offset": 10.0}, {"id": 3}})
	if err := a.AppendTable(b); err != nil {
		t.Fatalf("AppendTable: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("len=%d want 3", a.Len())
	}
	if got := a.Column("id"); !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Fatalf("ids = %v", got)
	}
	if got := a.Column("offset"); !reflect.DeepEqual(got, []any{nil, 10.0, nil}) {
		t.Fatalf("offset = %v", got)
	}
	if got := a.Column("shape"); !reflect.DeepEqual(got, []any{"rect", nil, nil}) {
		t.Fatalf("shape = %v", got)
	}
}

func TestQuantity_ConvertsUnits(t *testing.T) {
	tbl, _ := FromMap(map[string]any{"x": []float64{3600, 1800}, "y": []float64{60, 0}})
	x, err := tbl.Quantity("x", "arcsec", "deg")
	if err != nil {
		t.Fatalf("Quantity: %v", err)
	}
	if math.Abs(x[0]-1) > 1e-12 || math.Abs(x[1]-0.5) > 1e-12 {
		t.Fatalf("x = %v", x)
	}
	y, err := tbl.Quantity("y", "arcmin", "deg")
	if err != nil {
		t.Fatalf("Quantity: %v", err)
	}
	if math.Abs(y[0]-1) > 1e-12 {
		t.Fatalf("y = %v", y)
	}
	if _, err := tbl.Quantity("x", "parsec", "deg"); err == nil {
		t.Fatalf("expected unknown unit error")
	}
	if _, err := tbl.Quantity("z", "deg", "deg"); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestScalarConversions(t *testing.T) {
	if f, err := Float("2.5"); err != nil || f != 2.5 {
		t.Fatalf("Float: %v %v", f, err)
	}
	if n, err := Int(4.0); err != nil || n != 4 {
		t.Fatalf("Int: %v %v", n, err)
	}
	if _, err := Int(4.5); err == nil {
		t.Fatalf("Int(4.5) should fail")
	}
	if b, err := Bool("yes"); err != nil || !b {
		t.Fatalf("Bool: %v %v", b, err)
	}
	if _, err := Float(nil); err == nil {
		t.Fatalf("Float(nil) should fail")
	}
}
