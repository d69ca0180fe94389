package mbd

import (
	"bufio"
	"fmt"
	"math"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// WriteAeroBeams writes blade.aerobeam: one aerodynamic beam3 per element,
// referencing the AERO frames of the element's three structural nodes. The
// chord is piecewise linear over the element coordinate, the boundary point
// trails it by half a chord, twist is carried by the FEATH frames.
func WriteAeroBeams(grid *blade.Grid, name, path string) error {
	if grid.Aero == nil {
		return fmt.Errorf("grid has no aero interpolator attached")
	}

	chord := func(x float64) (float64, error) {
		c, err := grid.Aero.Eval(blade.ChordSignal, x)
		if err != nil {
			return 0, err
		}
		if !finite(c) {
			return 0, nil
		}
		return c, nil
	}

	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade.aerobeam\n# name=%s\n", name)
		for ei, el := range grid.Elements {
			eid := ei + 1
			nodeIDs := [3]int{2*eid - 1, 2 * eid, 2*eid + 1}

			c1, err := chord(el.Start)
			if err != nil {
				return err
			}
			cm, err := chord(el.Mid)
			if err != nil {
				return err
			}
			c2, err := chord(el.End)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "# element %d: x1=%s xm=%s x2=%s\n", eid, f10(el.Start), f10(el.Mid), f10(el.End))
			fmt.Fprintf(w, "aerodynamic beam3:\n")
			fmt.Fprintf(w, "    CURR_ROTOR + CURR_%s + %d,   # aero panel name\n", name, eid)
			fmt.Fprintf(w, "    CURR_ROTOR + CURR_%s + %d,   # link to structural beam\n", name, eid)
			fmt.Fprintf(w, "    induced velocity, CURR_ROTOR,\n")
			for _, nid := range nodeIDs {
				fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + AERO + %d, null,\n", name, nid)
				fmt.Fprintf(w, "        1, 0., 1., 0., 3, 1., 0., 0.,\n")
			}

			writePiecewiseChord(w, c1, cm, c2, 1.0)
			fmt.Fprintf(w, "    const, 0.,     # AC\n")
			writePiecewiseChord(w, c1, cm, c2, -0.5)
			fmt.Fprintf(w, "    const, 0.,     # Twist\n\n")
		}
		return nil
	})
}

func writePiecewiseChord(w *bufio.Writer, c1, cm, c2, scale float64) {
	fmt.Fprintf(w, "    piecewise linear, 3,\n")
	fmt.Fprintf(w, "        -1.0000000000, %s,\n", f10(scale*c1))
	fmt.Fprintf(w, "         0.0000000000, %s,\n", f10(scale*cm))
	fmt.Fprintf(w, "         1.0000000000, %s,\n", f10(scale*c2))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
