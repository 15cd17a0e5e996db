package settings

import (
	"errors"
	"testing"
)

func TestLookup_FollowsChains(t *testing.T) {
	c := New(map[string]any{
		"!INST.pixel_scale": "!DET.pixel_scale",
		"DET.pixel_scale":   0.004,
	})
	v, err := c.Lookup("!INST.pixel_scale")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v != 0.004 {
		t.Fatalf("got %v want 0.004", v)
	}
}

func TestLookup_MissingAndCycles(t *testing.T) {
	c := New(map[string]any{"A.x": "!A.y", "A.y": "!A.x"})
	if _, err := c.Lookup("!A.x"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("cycle: expected ErrUnresolved, got %v", err)
	}
	if _, err := c.Lookup("!OBS.airmass"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("missing: expected ErrUnresolved, got %v", err)
	}
	var nilCtx *Context
	if _, err := nilCtx.Lookup("!OBS.airmass"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("nil context: expected ErrUnresolved, got %v", err)
	}
}

func TestResolveMap_InPlace(t *testing.T) {
	c := New(map[string]any{"INST.pixel_scale": 0.1})
	meta := map[string]any{
		"pixel_scale": "!INST.pixel_scale",
		"angle":       12.0,
		"unknown":     "!OBS.nothing",
		"name":        "!",
	}
	c.ResolveMap(meta)
	if meta["pixel_scale"] != 0.1 {
		t.Fatalf("pixel_scale = %v", meta["pixel_scale"])
	}
	if meta["unknown"] != "!OBS.nothing" || meta["name"] != "!" || meta["angle"] != 12.0 {
		t.Fatalf("non-resolvable values must stay untouched: %v", meta)
	}
}

func TestClone_Independent(t *testing.T) {
	a := New(map[string]any{"INST.pixel_scale": 0.1})
	b := a.Clone()
	b.Set("!INST.pixel_scale", 0.2)
	if v, _ := a.Get("INST.pixel_scale"); v != 0.1 {
		t.Fatalf("clone write leaked into original: %v", v)
	}
	if b.Len() != 1 {
		t.Fatalf("len=%d want 1", b.Len())
	}
}
