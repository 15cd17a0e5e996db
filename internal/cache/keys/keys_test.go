package keys

import (
	"regexp"
	"testing"
)

func TestDeterminism_SameInputsSameKey(t *testing.T) {
	x := []float64{-1, 1, 1, -1}
	y := []float64{-1, -1, 1, 1}
	k1 := MaskKey("micado", x, y, 0.004)
	k2 := MaskKey("micado", append([]float64(nil), x...), append([]float64(nil), y...), 0.004)
	if k1 != k2 {
		t.Fatalf("determinism failed:\n k1=%s\n k2=%s", k1, k2)
	}
}

func TestDifference_GeometryAndScaleChangeKey(t *testing.T) {
	x := []float64{-1, 1, 1, -1}
	y := []float64{-1, -1, 1, 1}
	base := MaskKey("", x, y, 0.004)
	if MaskKey("", x, y, 0.005) == base {
		t.Fatalf("pixel scale must change the key")
	}
	if MaskKey("", []float64{-1, 1, 1, -1.5}, y, 0.004) == base {
		t.Fatalf("vertex change must change the key")
	}
	// swapping axes keeps the same multiset of numbers but is different geometry
	if MaskKey("", y, x, 0.004) == base {
		t.Fatalf("x/y swap must change the key")
	}
}

func TestNamespace_Sanitized(t *testing.T) {
	k := MaskKey("  MICADO slit/IFU  ", []float64{0, 1, 1}, []float64{0, 0, 1}, 0.01)
	if !regexp.MustCompile(`^[A-Za-z0-9:_=\-]+$`).MatchString(k) {
		t.Fatalf("key contains disallowed characters: %s", k)
	}
	if k2 := MaskKey("", []float64{0, 1, 1}, []float64{0, 0, 1}, 0.01); !regexp.MustCompile(`^aperture:mask:`).MatchString(k2) {
		t.Fatalf("default namespace missing: %s", k2)
	}
}
