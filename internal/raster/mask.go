package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Mask is a boolean coverage grid stored row-major: rows run along y
// (declination-like), columns along x.
type Mask struct {
	width  int
	height int
	data   []bool
}

func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]bool, width*height),
	}
}

// Width is the number of columns (NAXIS1).
func (m *Mask) Width() int { return m.width }

// Height is the number of rows (NAXIS2).
func (m *Mask) Height() int { return m.height }

// Shape returns (rows, columns).
func (m *Mask) Shape() (int, int) { return m.height, m.width }

// At reports the value at column x, row y. Outside the grid it is false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.data[y*m.width+x]
}

// Set ignores coordinates outside the grid.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = v
}

// Count returns the number of covered pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Rows renders each row as a string of '0' and '1'.
func (m *Mask) Rows() []string {
	out := make([]string, m.height)
	var b strings.Builder
	for y := range m.height {
		b.Reset()
		b.Grow(m.width)
		for x := range m.width {
			if m.data[y*m.width+x] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		out[y] = b.String()
	}
	return out
}

func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	c := NewMask(m.width, m.height)
	copy(c.data, m.data)
	return c
}

func (m *Mask) Equal(o *Mask) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// MarshalBinary packs the mask as width, height (uint32 big endian) and a bitset.
func (m *Mask) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8+(len(m.data)+7)/8)
	binary.BigEndian.PutUint32(buf[0:4], uint32(m.width))  // #nosec G115 -- grid sizes fit uint32
	binary.BigEndian.PutUint32(buf[4:8], uint32(m.height)) // #nosec G115 -- grid sizes fit uint32
	for i, v := range m.data {
		if v {
			buf[8+i/8] |= 1 << (uint(i) % 8)
		}
	}
	return buf, nil
}

func (m *Mask) UnmarshalBinary(b []byte) error {
	if len(b) < 8 {
		return errors.New("mask: short buffer")
	}
	w := int(binary.BigEndian.Uint32(b[0:4]))
	h := int(binary.BigEndian.Uint32(b[4:8]))
	if want := 8 + (w*h+7)/8; len(b) != want {
		return fmt.Errorf("mask: %dx%d needs %d bytes, got %d", w, h, want, len(b))
	}
	m.width, m.height = w, h
	m.data = make([]bool, w*h)
	for i := range m.data {
		m.data[i] = b[8+i/8]&(1<<(uint(i)%8)) != 0
	}
	return nil
}
