// Package keys builds content-addressed cache keys for aperture rasters.
package keys

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// MaskKey identifies the mask of polygon (x, y) in degrees at pixelScale
// degrees per pixel. Equal geometry gives equal keys regardless of which
// aperture or list produced it.
func MaskKey(namespace string, x, y []float64, pixelScale float64) string {
	ns := sanitizeNamespace(strings.TrimSpace(namespace))
	if ns == "" {
		ns = "aperture"
	}
	return fmt.Sprintf("%s:mask:n=%d:g=%016x", ns, len(x), Fingerprint(x, y, pixelScale))
}

// Fingerprint hashes the exact bit patterns of the inputs.
func Fingerprint(x, y []float64, pixelScale float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	put(pixelScale)
	binary.LittleEndian.PutUint64(buf[:], uint64(len(x)))
	_, _ = d.Write(buf[:])
	for _, v := range x {
		put(v)
	}
	for _, v := range y {
		put(v)
	}
	return d.Sum64()
}

func sanitizeNamespace(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
