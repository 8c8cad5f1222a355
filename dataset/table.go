// Package dataset provides the month-indexed table of BTC price and macro
// indicator columns that the model trains on.
//
// A Table is loaded once per session from the historical CSV and treated as
// read-only afterwards; every operation that needs a modified view (row
// cleaning, column selection) returns a new Table. Missing cells are
// represented as NaN and removed with DropNA before fitting.
package dataset

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	bmErrors "github.com/macroquant/btcmacro/pkg/errors"
)

// Table is an ordered collection of equally sized numeric columns with an
// optional date index.
type Table struct {
	dates []time.Time
	order []string
	cols  map[string][]float64
	nRows int
}

// New creates an empty table with the given date index. A nil index is
// allowed for synthetic tables; the row count is then fixed by the first
// column added.
func New(dates []time.Time) *Table {
	return &Table{
		dates: dates,
		cols:  map[string][]float64{},
		nRows: len(dates),
	}
}

// AddColumn appends a named column. The length must match the table's row
// count; the first column added to an index-less table fixes it.
func (t *Table) AddColumn(name string, values []float64) error {
	if _, exists := t.cols[name]; exists {
		return bmErrors.NewValueError("Table.AddColumn", "duplicate column "+name)
	}
	if t.nRows == 0 && len(t.order) == 0 && t.dates == nil {
		t.nRows = len(values)
	} else if len(values) != t.nRows {
		return bmErrors.NewDimensionError("Table.AddColumn", t.nRows, len(values), 0)
	}
	t.order = append(t.order, name)
	t.cols[name] = values
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the values of the named column. The slice is shared with
// the table and must not be mutated.
func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.cols[name]
	return v, ok
}

// Dates returns the date index, or nil for synthetic tables.
func (t *Table) Dates() []time.Time { return t.dates }

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool {
	return t.nRows == 0 || len(t.order) == 0
}

// DropNA returns a new table containing only the rows where none of the
// given columns is NaN. Columns not present in the table are ignored; all
// columns (not just the checked ones) are carried over. The result is
// guaranteed to have no NaN in the checked columns.
func (t *Table) DropNA(cols ...string) *Table {
	keep := make([]bool, t.nRows)
	for i := range keep {
		keep[i] = true
	}
	for _, name := range cols {
		values, ok := t.cols[name]
		if !ok {
			continue
		}
		for i, v := range values {
			if math.IsNaN(v) {
				keep[i] = false
			}
		}
	}

	var dates []time.Time
	if t.dates != nil {
		for i, k := range keep {
			if k {
				dates = append(dates, t.dates[i])
			}
		}
	}

	out := New(dates)
	if dates == nil {
		n := 0
		for _, k := range keep {
			if k {
				n++
			}
		}
		out.nRows = n
	}
	for _, name := range t.order {
		src := t.cols[name]
		dst := make([]float64, 0, out.nRows)
		for i, k := range keep {
			if k {
				dst = append(dst, src[i])
			}
		}
		out.order = append(out.order, name)
		out.cols[name] = dst
	}
	return out
}

// ColumnStats summarizes a column for the slider controls.
type ColumnStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Stats computes min, max and median over the non-NaN values of a column.
func (t *Table) Stats(name string) (ColumnStats, error) {
	values, ok := t.cols[name]
	if !ok {
		return ColumnStats{}, bmErrors.NewValueError("Table.Stats", "unknown column "+name)
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return ColumnStats{}, bmErrors.NewModelError("Table.Stats", "column "+name+" has no values", bmErrors.ErrEmptyData)
	}

	sort.Float64s(clean)
	n := len(clean)
	median := clean[n/2]
	if n%2 == 0 {
		median = (clean[n/2-1] + clean[n/2]) / 2
	}
	return ColumnStats{Min: clean[0], Max: clean[n-1], Median: median}, nil
}

// Matrix assembles the named columns into an (n_rows × len(cols)) dense
// matrix in the given column order.
func (t *Table) Matrix(cols []string) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, bmErrors.NewValueError("Table.Matrix", "no columns given")
	}
	for _, name := range cols {
		if !t.HasColumn(name) {
			return nil, bmErrors.NewValueError("Table.Matrix", "unknown column "+name)
		}
	}

	out := mat.NewDense(t.nRows, len(cols), nil)
	for j, name := range cols {
		values := t.cols[name]
		for i := 0; i < t.nRows; i++ {
			out.Set(i, j, values[i])
		}
	}
	return out, nil
}

// Vector assembles a single column into an (n_rows × 1) dense matrix.
func (t *Table) Vector(col string) (*mat.Dense, error) {
	return t.Matrix([]string{col})
}
