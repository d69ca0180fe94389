package blade

import (
	"fmt"
	"math"
)

// Element is one beam segment between two adjacent control sections,
// discretized with a start/mid/end node triple.
type Element struct {
	Start float64
	Mid   float64
	End   float64
}

// Grid is the discretized beam model derived from a frozen control section
// set: the end-mid-end node layout, the element triples, and the two-point
// Gauss evaluation stations per element. The optional interpolators bound
// here feed the downstream emitters.
type Grid struct {
	Sections   []float64    // K control sections, strictly increasing
	Nodes      []float64    // 2K-1 span positions, end-mid-end per element
	Elements   []Element    // K-1 triples
	EvalPoints [][2]float64 // K-1 Gauss station pairs

	Tip  *Interpolator // structural signals; set by AttachInterpolators
	Aero *Interpolator // aerodynamic signals; nil when no aero data
}

// BuildGrid derives the node layout and evaluation stations from the control
// sections. It requires K >= 2 strictly increasing positions.
func BuildGrid(sections []float64) (*Grid, error) {
	if len(sections) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 control sections, got %d",
			ErrInvalidSections, len(sections))
	}
	for i := 1; i < len(sections); i++ {
		if sections[i]-sections[i-1] <= 0 {
			return nil, fmt.Errorf("%w: sections must be strictly increasing (r[%d]=%g, r[%d]=%g)",
				ErrInvalidSections, i-1, sections[i-1], i, sections[i])
		}
	}

	secs := append([]float64(nil), sections...)
	k := len(secs)
	nodes := make([]float64, 0, 2*k-1)
	elements := make([]Element, 0, k-1)
	evalPoints := make([][2]float64, 0, k-1)

	invSqrt3 := 1.0 / math.Sqrt(3.0)
	for i := 0; i < k-1; i++ {
		x1, x2 := secs[i], secs[i+1]
		xm := 0.5 * (x1 + x2)

		if i == 0 {
			nodes = append(nodes, x1)
		}
		nodes = append(nodes, xm, x2)
		elements = append(elements, Element{Start: x1, Mid: xm, End: x2})

		// two-point Gauss-Legendre abscissae rescaled to the element span
		off := 0.5 * invSqrt3 * (x2 - x1)
		evalPoints = append(evalPoints, [2]float64{xm - off, xm + off})
	}

	return &Grid{
		Sections:   secs,
		Nodes:      nodes,
		Elements:   elements,
		EvalPoints: evalPoints,
	}, nil
}

// AttachInterpolators binds the structural and optional aerodynamic
// interpolators to the grid. Pass aero as nil when no aerodynamic table is
// available.
func (g *Grid) AttachInterpolators(tip, aero *Interpolator) {
	g.Tip = tip
	g.Aero = aero
}
