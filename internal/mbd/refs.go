package mbd

import (
	"bufio"
	"fmt"
	"math"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// WriteRefs writes blade.ref: three reference frames per grid node.
//
// FEATH+i sits at x=nodes[i] rotated about x by the pitch-axis angle; NEUTR+i
// and BODY+i translate from it to the neutral axis and the mass center. The
// lateral offsets are mirrored by ySign for clockwise rotors.
func WriteRefs(grid *blade.Grid, name, path string, ySign float64) error {
	if grid.Tip == nil {
		return fmt.Errorf("grid has no structural interpolator attached")
	}
	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade.ref\n# name=%s\n", name)
		for i, x := range grid.Nodes {
			id := i + 1

			rotAPI, err := grid.Tip.Eval("ROTAPI", x)
			if err != nil {
				return err
			}
			c := math.Cos(rotAPI * math.Pi / 180)
			s := math.Sin(rotAPI * math.Pi / 180)

			fmt.Fprintf(w, "reference: CURR_ROTOR + CURR_%s + FEATH + %d, #gen ref\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE, %s, 0., 0.,\n", f10(x))
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE,\n")
			fmt.Fprintf(w, "        1, 1., 0., 0.,\n")
			fmt.Fprintf(w, "        2, 0., %s, %s,\n", f10(c), f10(s))
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE, null,\n")
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE, null;\n\n")

			yna, err := grid.Tip.Eval("YNA", x)
			if err != nil {
				return err
			}
			zna, err := grid.Tip.Eval("ZNA", x)
			if err != nil {
				return err
			}
			writeOffsetRef(w, name, "NEUTR", id, ySign*yna, zna)

			ycg, err := grid.Tip.Eval("YCG", x)
			if err != nil {
				return err
			}
			zcg, err := grid.Tip.Eval("ZCG", x)
			if err != nil {
				return err
			}
			writeOffsetRef(w, name, "BODY", id, ySign*ycg, zcg)
		}
		return nil
	})
}

func writeOffsetRef(w *bufio.Writer, name, kind string, id int, y, z float64) {
	fmt.Fprintf(w, "reference: CURR_ROTOR + CURR_%s + %s + %d, #gen ref\n", name, kind, id)
	fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, 0., %s, %s,\n", name, id, f10(y), f10(z))
	fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, eye,\n", name, id)
	fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, null,\n", name, id)
	fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, null;\n\n", name, id)
}

// WriteNodes writes blade.nod: one dynamic structural node per grid node,
// placed and oriented at its NEUTR reference.
func WriteNodes(grid *blade.Grid, name, path string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade.nod\n# name=%s\n", name)
		for i := range grid.Nodes {
			id := i + 1
			fmt.Fprintf(w, "structural:  CURR_ROTOR + CURR_%s + %d, dynamic,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + NEUTR + %d, null,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + NEUTR + %d, eye,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + NEUTR + %d, null,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + NEUTR + %d, null;\n\n", name, id)
		}
		return nil
	})
}

// WriteAeroRefs writes blade_aero.ref: AERO+i frames co-located with FEATH+i.
func WriteAeroRefs(grid *blade.Grid, name, path string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade_aero.ref\n# name=%s\n", name)
		for i := range grid.Nodes {
			id := i + 1
			fmt.Fprintf(w, "reference: CURR_ROTOR + CURR_%s + AERO + %d, #gen ref\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, 0., 0., 0.,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + FEATH + %d, eye,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE, null,\n")
			fmt.Fprintf(w, "    reference, CURR_ROTOR + BASE, null;\n\n")
		}
		return nil
	})
}
