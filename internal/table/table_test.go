package table

import (
	"math"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tbl, err := New(
		series.New([]int{1, 2}, series.Int, "a"),
		series.New([]string{"x", "y"}, series.String, "a"),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, tbl.Names())
	assert.Equal(t, 0, tbl.Index("a"))
	assert.Equal(t, -1, tbl.Index("b"))
}

func TestNew_LengthMismatch(t *testing.T) {
	_, err := New(
		series.New([]int{1, 2}, series.Int, "a"),
		series.New([]int{1}, series.Int, "b"),
	)

	assert.Error(t, err)
}

func TestNew_Empty(t *testing.T) {
	tbl, err := New()

	require.NoError(t, err)
	rows, cols := tbl.Shape()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
}

func TestWithNames(t *testing.T) {
	tbl, err := New(series.New([]int{1}, series.Int, "a"))
	require.NoError(t, err)

	renamed, err := tbl.WithNames([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, renamed.Names())
	assert.Equal(t, []string{"a"}, tbl.Names())

	_, err = tbl.WithNames([]string{"x", "y"})
	assert.Error(t, err)
}

func TestIsMissingAndCellKey(t *testing.T) {
	floats := series.New([]float64{1.5, math.NaN(), 0.1 + 0.2}, series.Float, "f")
	strs := series.New([]string{"BENIGN", "NaN"}, series.String, "s")
	ints := series.New([]string{"7", "NaN"}, series.Int, "i")
	bools := series.New([]bool{true}, series.Bool, "b")

	assert.False(t, IsMissing(floats.Elem(0)))
	assert.True(t, IsMissing(floats.Elem(1)))
	assert.True(t, IsMissing(strs.Elem(1)))
	assert.True(t, IsMissing(ints.Elem(1)))

	assert.Equal(t, "1.5", CellKey(floats.Elem(0)))
	assert.Equal(t, "0.30000000000000004", CellKey(floats.Elem(2)))
	assert.Equal(t, CellKey(floats.Elem(1)), CellKey(strs.Elem(1)))
	assert.Equal(t, "BENIGN", CellKey(strs.Elem(0)))
	assert.Equal(t, "7", CellKey(ints.Elem(0)))
	assert.Equal(t, "true", CellKey(bools.Elem(0)))

	zeros := series.New([]float64{math.Copysign(0, -1), 0}, series.Float, "z")
	assert.Equal(t, "0", CellKey(zeros.Elem(0)))
	assert.Equal(t, CellKey(zeros.Elem(1)), CellKey(zeros.Elem(0)))
}
