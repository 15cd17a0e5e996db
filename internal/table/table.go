// Package table holds small column-oriented tables with header metadata.
package table

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// Table is a set of equal-length named columns plus header metadata.
// Mutators bump Version; writes through the slice returned by Column do not.
type Table struct {
	Meta map[string]any

	names   []string
	cols    map[string][]any
	nrows   int
	version uint64
}

func New() *Table {
	return &Table{Meta: map[string]any{}, cols: map[string][]any{}}
}

// FromMap splits m into columns (slice values) and metadata (everything else).
// Columns are ordered by name.
func FromMap(m map[string]any) (*Table, error) {
	t := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals, ok := toSlice(m[k])
		if !ok {
			t.Meta[k] = m[k]
			continue
		}
		if err := t.AddColumn(k, vals); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromRows builds a table with the given column order from row maps.
// Keys absent from a row are stored as nil.
func FromRows(names []string, rows []map[string]any) (*Table, error) {
	t := New()
	for _, n := range names {
		if err := t.AddColumn(n, make([]any, 0, len(rows))); err != nil {
			return nil, err
		}
	}
	for _, r := range rows {
		if err := t.AppendRow(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) Len() int { return t.nrows }

// Version increases on every tracked mutation.
func (t *Table) Version() uint64 { return t.version }

func (t *Table) ColNames() []string { return slices.Clone(t.names) }

func (t *Table) Has(names ...string) bool {
	return len(t.Missing(names...)) == 0
}

// Missing returns the names with no matching column, in argument order.
func (t *Table) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// AddColumn appends a column. The first column fixes the row count.
func (t *Table) AddColumn(name string, values []any) error {
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("table: duplicate column %q", name)
	}
	if len(t.names) > 0 && len(values) != t.nrows {
		return fmt.Errorf("table: column %q has %d rows, table has %d", name, len(values), t.nrows)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	t.nrows = len(values)
	t.version++
	return nil
}

// Column returns the backing slice of a column, or nil.
func (t *Table) Column(name string) []any { return t.cols[name] }

func (t *Table) Value(row int, name string) (any, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("table: no column %q", name)
	}
	if row < 0 || row >= t.nrows {
		return nil, fmt.Errorf("table: row %d out of range [0,%d)", row, t.nrows)
	}
	return col[row], nil
}

// Row copies one row into a map keyed by column name.
func (t *Table) Row(i int) (map[string]any, error) {
	if i < 0 || i >= t.nrows {
		return nil, fmt.Errorf("table: row %d out of range [0,%d)", i, t.nrows)
	}
	out := make(map[string]any, len(t.names))
	for _, n := range t.names {
		out[n] = t.cols[n][i]
	}
	return out, nil
}

func (t *Table) Set(row int, name string, v any) error {
	if _, err := t.Value(row, name); err != nil {
		return err
	}
	t.cols[name][row] = v
	t.version++
	return nil
}

// AppendRow adds a row. Keys that are not columns are rejected.
func (t *Table) AppendRow(r map[string]any) error {
	for k := range r {
		if _, ok := t.cols[k]; !ok {
			return fmt.Errorf("table: row has unknown column %q", k)
		}
	}
	for _, n := range t.names {
		t.cols[n] = append(t.cols[n], r[n])
	}
	t.nrows++
	t.version++
	return nil
}

// AppendTable stacks o's rows below t's. Columns present in only one of the
// tables are kept and padded with nil.
func (t *Table) AppendTable(o *Table) error {
	if o == nil {
		return nil
	}
	for _, n := range o.names {
		if _, ok := t.cols[n]; !ok {
			t.names = append(t.names, n)
			t.cols[n] = make([]any, t.nrows)
		}
	}
	for _, n := range t.names {
		src, ok := o.cols[n]
		if !ok {
			src = make([]any, o.nrows)
		}
		t.cols[n] = append(t.cols[n], src...)
	}
	t.nrows += o.nrows
	t.version++
	return nil
}

// Clone deep-copies columns and copies metadata shallowly.
func (t *Table) Clone() *Table {
	c := New()
	for k, v := range t.Meta {
		c.Meta[k] = v
	}
	c.names = slices.Clone(t.names)
	for n, col := range t.cols {
		c.cols[n] = slices.Clone(col)
	}
	c.nrows = t.nrows
	return c
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
