package blade_test

import (
	"math"
	"testing"

	"github.com/alexiusacademia/gorotor/internal/blade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildGrid_StructureAndEvalPoints pins the end-mid-end layout and the
// two-point Gauss stations for a small asymmetric section list.
func TestBuildGrid_StructureAndEvalPoints(t *testing.T) {
	grid, err := blade.BuildGrid([]float64{0.0, 0.5, 1.5})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.0, 0.5, 1.5}, grid.Sections)
	assert.Equal(t, []float64{0.0, 0.25, 0.5, 1.0, 1.5}, grid.Nodes)

	require.Len(t, grid.Elements, 2)
	assert.Equal(t, blade.Element{Start: 0.0, Mid: 0.25, End: 0.5}, grid.Elements[0])
	assert.Equal(t, blade.Element{Start: 0.5, Mid: 1.0, End: 1.5}, grid.Elements[1])

	invSqrt3 := 1.0 / math.Sqrt(3.0)
	require.Len(t, grid.EvalPoints, 2)
	assert.InDelta(t, 0.25-0.5*invSqrt3*0.5, grid.EvalPoints[0][0], 1e-15)
	assert.InDelta(t, 0.25+0.5*invSqrt3*0.5, grid.EvalPoints[0][1], 1e-15)
	assert.InDelta(t, 1.0-0.5*invSqrt3*1.0, grid.EvalPoints[1][0], 1e-15)
	assert.InDelta(t, 1.0+0.5*invSqrt3*1.0, grid.EvalPoints[1][1], 1e-15)

	assert.Nil(t, grid.Tip)
	assert.Nil(t, grid.Aero)
}

// TestBuildGrid_Counts verifies the K-1 / 2K-1 element and node counts and
// the exact midpoint invariant for a longer section list.
func TestBuildGrid_Counts(t *testing.T) {
	sections := []float64{0, 0.7, 1.1, 2.9, 4.0, 6.3, 10.0}
	grid, err := blade.BuildGrid(sections)
	require.NoError(t, err)

	k := len(sections)
	assert.Len(t, grid.Elements, k-1)
	assert.Len(t, grid.Nodes, 2*k-1)
	assert.Len(t, grid.EvalPoints, k-1)

	for i, el := range grid.Elements {
		assert.Equal(t, 0.5*(el.Start+el.End), el.Mid, "element %d midpoint", i)
		// Gauss stations lie strictly inside the element span
		assert.Greater(t, grid.EvalPoints[i][0], el.Start)
		assert.Less(t, grid.EvalPoints[i][1], el.End)
		assert.Less(t, grid.EvalPoints[i][0], grid.EvalPoints[i][1])
	}
}

func TestBuildGrid_InvalidSections(t *testing.T) {
	_, err := blade.BuildGrid(nil)
	assert.ErrorIs(t, err, blade.ErrInvalidSections, "nil sections must error")

	_, err = blade.BuildGrid([]float64{1.0})
	assert.ErrorIs(t, err, blade.ErrInvalidSections, "a single section must error")

	_, err = blade.BuildGrid([]float64{0, 1, 1})
	assert.ErrorIs(t, err, blade.ErrInvalidSections, "duplicate sections must error")

	_, err = blade.BuildGrid([]float64{0, 2, 1})
	assert.ErrorIs(t, err, blade.ErrInvalidSections, "descending sections must error")
}
