package geometry

import (
	"errors"
	"testing"
)

func TestParseShape(t *testing.T) {
	cases := []struct {
		in   string
		want Shape
	}{
		{"round", Round},
		{" Rect ", Rect},
		{"hex", Hex},
		{"oct", Oct},
		{"4", NGon(4)},
		{"7.0", NGon(7)},
		{"apertures/slit_3000x50.dat", FileRef("apertures/slit_3000x50.dat")},
		{"mask.txt", FileRef("mask.txt")},
	}
	for _, c := range cases {
		got, err := ParseShape(c.in)
		if err != nil {
			t.Fatalf("ParseShape(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseShape(%q) = %+v want %+v", c.in, got, c.want)
		}
	}
}

func TestParseShape_UnknownNamesToken(t *testing.T) {
	_, err := ParseShape("triangle")
	if !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("expected unknown shape error, got %v", err)
	}
	var use *UnknownShapeError
	if !errors.As(err, &use) || use.Token != "triangle" {
		t.Fatalf("error should name the token, got %v", err)
	}
}

func TestShapeOf_LooseCells(t *testing.T) {
	if s, err := ShapeOf(6); err != nil || s != NGon(6) {
		t.Fatalf("int cell: %+v %v", s, err)
	}
	if s, err := ShapeOf(8.0); err != nil || s != NGon(8) {
		t.Fatalf("float cell: %+v %v", s, err)
	}
	if s, err := ShapeOf(Hex); err != nil || s != Hex {
		t.Fatalf("shape cell: %+v %v", s, err)
	}
	if _, err := ShapeOf(true); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("bool cell should be unknown, got %v", err)
	}
}

func TestShape_StringRoundTrips(t *testing.T) {
	for _, s := range []Shape{Round, Rect, Hex, Oct, NGon(5), FileRef("a/b.dat")} {
		got, err := ParseShape(s.String())
		if err != nil || got != s {
			t.Fatalf("%+v -> %q -> %+v (%v)", s, s.String(), got, err)
		}
	}
}
