package effects

import (
	"fmt"
	"slices"

	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

// ZOrder is a priority marker. A scalar marker is a one-element slice.
type ZOrder []int

func Z(levels ...int) ZOrder { return ZOrder(slices.Clone(levels)) }

// Within reports whether any stage of z falls in r.
func (z ZOrder) Within(r ZRange) bool {
	for _, v := range z {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

// ZRange is an inclusive priority window.
type ZRange struct {
	Min, Max int
}

var DefaultZRange = ZRange{Min: 0, Max: 600}

// ZLevel is the hundred-wide window starting at z.
func ZLevel(z int) ZRange { return ZRange{Min: z, Max: z + 99} }

func ZBetween(zmin, zmax int) ZRange { return ZRange{Min: zmin, Max: zmax} }

func (r ZRange) Contains(z int) bool { return r.Min <= z && z <= r.Max }

// ParseZOrder reads a marker from metadata: an integer, a list of integers,
// or nil for no marker.
func ParseZOrder(v any) (ZOrder, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case ZOrder:
		return t, nil
	case []int:
		return ZOrder(t), nil
	case []any:
		out := make(ZOrder, 0, len(t))
		for i, e := range t {
			n, err := table.Int(e)
			if err != nil {
				return nil, fmt.Errorf("z_order[%d]: %w", i, err)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := table.Int(v)
		if err != nil {
			return nil, fmt.Errorf("z_order: %w", err)
		}
		return ZOrder{n}, nil
	}
}
