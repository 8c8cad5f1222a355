package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_AddColumn(t *testing.T) {
	tbl := New(nil)

	require.NoError(t, tbl.AddColumn("a", []float64{1, 2, 3}))
	assert.Equal(t, 3, tbl.NumRows())

	assert.Error(t, tbl.AddColumn("a", []float64{4, 5, 6}), "duplicate name")
	assert.Error(t, tbl.AddColumn("b", []float64{1, 2}), "wrong length")

	require.NoError(t, tbl.AddColumn("b", []float64{4, 5, 6}))
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestTable_DropNA(t *testing.T) {
	nan := math.NaN()
	tbl := New(nil)
	require.NoError(t, tbl.AddColumn("x", []float64{1, nan, 3, 4}))
	require.NoError(t, tbl.AddColumn("y", []float64{10, 20, nan, 40}))
	require.NoError(t, tbl.AddColumn("z", []float64{nan, nan, nan, nan}))

	clean := tbl.DropNA("x", "y")
	assert.Equal(t, 2, clean.NumRows())

	// No NaN may remain in the checked columns.
	for _, name := range []string{"x", "y"} {
		values, ok := clean.Column(name)
		require.True(t, ok)
		for _, v := range values {
			assert.False(t, math.IsNaN(v), "NaN left in %s", name)
		}
	}

	// Unchecked columns are carried over untouched, NaN and all.
	z, ok := clean.Column("z")
	require.True(t, ok)
	assert.Len(t, z, 2)
	assert.True(t, math.IsNaN(z[0]))

	// The source table is unchanged.
	assert.Equal(t, 4, tbl.NumRows())
}

func TestTable_DropNA_IgnoresUnknownColumns(t *testing.T) {
	tbl := New(nil)
	require.NoError(t, tbl.AddColumn("x", []float64{1, 2}))

	clean := tbl.DropNA("x", "missing")
	assert.Equal(t, 2, clean.NumRows())
}

func TestTable_Stats(t *testing.T) {
	nan := math.NaN()
	tbl := New(nil)
	require.NoError(t, tbl.AddColumn("odd", []float64{5, 1, 3, 9, 7}))
	require.NoError(t, tbl.AddColumn("even", []float64{4, 1, 2, 3, nan}))
	require.NoError(t, tbl.AddColumn("gaps", []float64{nan, 2, 8, nan, nan}))

	odd, err := tbl.Stats("odd")
	require.NoError(t, err)
	assert.Equal(t, ColumnStats{Min: 1, Max: 9, Median: 5}, odd)

	// Even count: the median averages the two middle values.
	even, err := tbl.Stats("even")
	require.NoError(t, err)
	assert.Equal(t, ColumnStats{Min: 1, Max: 4, Median: 2.5}, even)

	// NaN values are excluded before computing the summary.
	gaps, err := tbl.Stats("gaps")
	require.NoError(t, err)
	assert.Equal(t, ColumnStats{Min: 2, Max: 8, Median: 5}, gaps)

	_, err = tbl.Stats("missing")
	assert.Error(t, err)
}

func TestTable_Matrix(t *testing.T) {
	tbl := New(nil)
	require.NoError(t, tbl.AddColumn("a", []float64{1, 2}))
	require.NoError(t, tbl.AddColumn("b", []float64{3, 4}))

	m, err := tbl.Matrix([]string{"b", "a"})
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	// Column order follows the request, not the table.
	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(0, 1))

	_, err = tbl.Matrix([]string{"a", "missing"})
	assert.Error(t, err)
	_, err = tbl.Matrix(nil)
	assert.Error(t, err)
}
