package blade

import (
	"fmt"
	"math"
	"sort"
)

const eps = 1e-12

// Series is one named physical quantity sampled along the span.
// X is strictly increasing after construction.
type Series struct {
	X []float64
	Y []float64
}

// NewSeries builds a Series from raw samples. Samples are stably sorted by x
// ascending and duplicate x values are collapsed by averaging their y values,
// so the result does not depend on input order.
func NewSeries(x, y []float64) (Series, error) {
	if len(x) == 0 || len(x) != len(y) {
		return Series{}, fmt.Errorf("%w: got %d x and %d y samples", ErrDataShape, len(x), len(y))
	}
	anyFinite := false
	for _, v := range y {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			anyFinite = true
			break
		}
	}
	if !anyFinite {
		return Series{}, fmt.Errorf("%w: all values non-finite", ErrDataShape)
	}

	order := sortOrder(x)
	xs, groups := groupAbscissa(x, order)
	ys := groupMean(y, groups)
	return Series{X: xs, Y: ys}, nil
}

// At returns the clamped linear interpolation of the series at x: the first
// value at or below the domain, the last value at or beyond it, and the
// bracketing linear estimate in between.
func (s Series) At(x float64) float64 {
	return interp1(s.X, s.Y, x)
}

// Min and Max report the series domain.
func (s Series) Min() float64 { return s.X[0] }
func (s Series) Max() float64 { return s.X[len(s.X)-1] }

// Interpolator binds a shared abscissa to named value columns and answers
// clamped linear queries per signal. It is owned by the Grid it is attached
// to and is a pure function of the bound data.
type Interpolator struct {
	x      []float64
	fields map[string][]float64
}

// NewInterpolator builds an Interpolator over x and the named columns.
// Every column must match the abscissa length. The abscissa is stably
// sorted ascending and duplicate stations are merged by averaging, applied
// consistently to every column.
func NewInterpolator(x []float64, fields map[string][]float64) (*Interpolator, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty abscissa", ErrDataShape)
	}
	for name, col := range fields {
		if len(col) != len(x) {
			return nil, fmt.Errorf("%w: field %q has %d samples, abscissa has %d",
				ErrDataShape, name, len(col), len(x))
		}
	}

	order := sortOrder(x)
	xs, groups := groupAbscissa(x, order)
	out := make(map[string][]float64, len(fields))
	for name, col := range fields {
		out[name] = groupMean(col, groups)
	}
	return &Interpolator{x: xs, fields: out}, nil
}

// Eval returns the clamped linear interpolation of the named signal at x.
func (it *Interpolator) Eval(name string, x float64) (float64, error) {
	col, ok := it.fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	return interp1(it.x, col, x), nil
}

// Has reports whether the named signal is bound.
func (it *Interpolator) Has(name string) bool {
	_, ok := it.fields[name]
	return ok
}

// Series extracts one bound signal as a standalone Series.
func (it *Interpolator) Series(name string) (Series, error) {
	col, ok := it.fields[name]
	if !ok {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	return Series{X: it.x, Y: col}, nil
}

// sortOrder returns the indices of x in stable ascending order.
func sortOrder(x []float64) []int {
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })
	return order
}

// groupAbscissa walks x in sorted order and groups equal stations.
// It returns the unique ascending abscissa and, per unique station, the
// original indices contributing to it.
func groupAbscissa(x []float64, order []int) ([]float64, [][]int) {
	var xs []float64
	var groups [][]int
	for _, idx := range order {
		v := x[idx]
		if len(xs) > 0 && v == xs[len(xs)-1] {
			groups[len(groups)-1] = append(groups[len(groups)-1], idx)
			continue
		}
		xs = append(xs, v)
		groups = append(groups, []int{idx})
	}
	return xs, groups
}

// groupMean reduces col over the station groups by arithmetic mean.
func groupMean(col []float64, groups [][]int) []float64 {
	out := make([]float64, len(groups))
	for i, g := range groups {
		sum := 0.0
		for _, idx := range g {
			sum += col[idx]
		}
		out[i] = sum / float64(len(g))
	}
	return out
}

// interp1 is clamped linear interpolation over an ascending abscissa.
func interp1(x, y []float64, xq float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	if xq <= x[0] {
		return y[0]
	}
	if xq >= x[n-1] {
		return y[n-1]
	}
	j := sort.SearchFloat64s(x, xq)
	// x[j-1] < xq <= x[j]
	x0, x1 := x[j-1], x[j]
	y0, y1 := y[j-1], y[j]
	if x1-x0 <= eps {
		return y0
	}
	return y0 + (y1-y0)*(xq-x0)/(x1-x0)
}
