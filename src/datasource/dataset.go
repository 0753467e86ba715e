// Package datasource holds imported tabular datasets and the per-format
// importers that produce them. Datasets are column-oriented: named float64
// series plus a shared row-index coordinate.
package datasource

import "fmt"

// IndexKey is the reserved x-key addressing the row-index coordinate.
const IndexKey = "index"

// Column is one named series with optional unit metadata.
type Column struct {
	Values []float64
	Unit   string
}

// Dataset is one imported file: an ordered set of columns sharing a row index.
type Dataset struct {
	columns map[string]*Column
	order   []string
	index   []float64
}

func NewDataset() *Dataset {
	return &Dataset{columns: map[string]*Column{}}
}

// AddColumn appends a named series. Adding a column under an existing name
// replaces its values but keeps its position.
func (d *Dataset) AddColumn(name string, values []float64, unit string) {
	if _, ok := d.columns[name]; !ok {
		d.order = append(d.order, name)
	}
	d.columns[name] = &Column{Values: values, Unit: unit}
	if len(values) > len(d.index) {
		d.index = make([]float64, len(values))
		for i := range d.index {
			d.index[i] = float64(i)
		}
	}
}

// Clone returns a dataset with its own column table. Value slices are shared
// with the original; they are never mutated in place.
func (d *Dataset) Clone() *Dataset {
	nd := NewDataset()
	for _, name := range d.order {
		c := d.columns[name]
		nd.AddColumn(name, c.Values, c.Unit)
	}
	return nd
}

// Vars returns column names in insertion order.
func (d *Dataset) Vars() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Dataset) Has(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Values returns the series stored under name.
func (d *Dataset) Values(name string) ([]float64, bool) {
	c, ok := d.columns[name]
	if !ok {
		return nil, false
	}
	return c.Values, true
}

// Unit returns the unit recorded for name, or "".
func (d *Dataset) Unit(name string) string {
	if c, ok := d.columns[name]; ok {
		return c.Unit
	}
	return ""
}

// XValues resolves an x-key: the reserved "index" key yields the row index,
// anything else must be an existing column.
func (d *Dataset) XValues(xKey string) ([]float64, error) {
	if xKey == "" || xKey == IndexKey {
		out := make([]float64, len(d.index))
		copy(out, d.index)
		return out, nil
	}
	v, ok := d.Values(xKey)
	if !ok {
		return nil, fmt.Errorf("datasource: no such x column %q", xKey)
	}
	return v, nil
}

// Len reports the row count (length of the index coordinate).
func (d *Dataset) Len() int { return len(d.index) }
