package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit scale factors to degrees.
var toDegree = map[string]float64{
	"deg":    1,
	"degree": 1,
	"arcmin": 1.0 / 60,
	"arcsec": 1.0 / 3600,
	"mas":    1.0 / 3600e3,
}

// Floats converts a column to float64.
func (t *Table) Floats(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	out := make([]float64, len(col))
	for i, v := range col {
		f, err := Float(v)
		if err != nil {
			return nil, fmt.Errorf("table: column %q row %d: %w", name, i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Quantity returns column name converted from unit from to unit to.
func (t *Table) Quantity(name, from, to string) ([]float64, error) {
	vals, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	f, err := UnitFactor(from, to)
	if err != nil {
		return nil, fmt.Errorf("table: column %q: %w", name, err)
	}
	for i := range vals {
		vals[i] *= f
	}
	return vals, nil
}

// UnitFactor is the multiplier converting angles in from to angles in to.
func UnitFactor(from, to string) (float64, error) {
	a, ok := toDegree[strings.ToLower(strings.TrimSpace(from))]
	if !ok {
		return 0, fmt.Errorf("unknown angle unit %q", from)
	}
	b, ok := toDegree[strings.ToLower(strings.TrimSpace(to))]
	if !ok {
		return 0, fmt.Errorf("unknown angle unit %q", to)
	}
	return a / b, nil
}

func Float(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func Int(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("not an integer: %v (%T)", v, v)
	}
}

func Bool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "t", "true", "y", "yes":
			return true, nil
		case "0", "f", "false", "n", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a bool: %q", t)
	default:
		return false, fmt.Errorf("not a bool: %v (%T)", v, v)
	}
}
