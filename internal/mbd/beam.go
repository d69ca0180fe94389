package mbd

import (
	"bufio"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// assembleK builds the symmetric 6x6 constitutive matrix at one evaluation
// point. y1/z1 are the shear-center offsets from the neutral axis, rotDeg the
// section rotation, nu the Poisson ratio driving the shear stiffness.
func assembleK(ea, ejy, ejz, gj, y1, z1, rotDeg, nu float64) [6][6]float64 {
	c := math.Cos(rotDeg * math.Pi / 180)
	s := math.Sin(rotDeg * math.Pi / 180)

	ga := ea / (2 * (1 + nu))

	a22 := ejy*c*c + ejz*s*s + z1*z1*ea
	a33 := ejz*c*c + ejy*s*s + y1*y1*ea
	a23 := (ejy-ejz)*c*s - y1*z1*ea

	k15 := z1 * ea
	k16 := -y1 * ea

	return [6][6]float64{
		{ea, 0, 0, 0, k15, k16},
		{0, ga, 0, 0, 0, 0},
		{0, 0, ga, 0, 0, 0},
		{0, 0, 0, gj, 0, 0},
		{k15, 0, 0, 0, a22, a23},
		{k16, 0, 0, 0, a23, a33},
	}
}

func writeMatrixBlock(w *bufio.Writer, k [6][6]float64, comment string) {
	fmt.Fprintf(w, "        linear elastic generic, matr,  %s\n", comment)
	for i := 0; i < 6; i++ {
		row := make([]string, 6)
		for j := 0; j < 6; j++ {
			row[j] = e6(k[i][j])
		}
		end := ",\n"
		if i == 5 {
			end = ";\n"
		}
		fmt.Fprintf(w, "            %s%s", strings.Join(row, ", "), end)
	}
}

// WriteBeams writes blade.beam: one beam3 block per element, three nodes at
// the shear-center offsets from their NEUTR frames and two constitutive
// matrices evaluated at the element's Gauss stations. ySign mirrors the
// lateral offsets for clockwise rotors.
func WriteBeams(grid *blade.Grid, name string, nu float64, path string, ySign float64) error {
	if grid.Tip == nil {
		return fmt.Errorf("grid has no structural interpolator attached")
	}

	shear := func(x float64) (float64, float64, error) {
		yct, err := grid.Tip.Eval("YCT", x)
		if err != nil {
			return 0, 0, err
		}
		zct, err := grid.Tip.Eval("ZCT", x)
		if err != nil {
			return 0, 0, err
		}
		yna, err := grid.Tip.Eval("YNA", x)
		if err != nil {
			return 0, 0, err
		}
		zna, err := grid.Tip.Eval("ZNA", x)
		if err != nil {
			return 0, 0, err
		}
		return ySign * (yct - yna), zct - zna, nil
	}

	kAt := func(x float64) ([6][6]float64, error) {
		var zero [6][6]float64
		ea, err := grid.Tip.Eval("EA", x)
		if err != nil {
			return zero, err
		}
		ejy, err := grid.Tip.Eval("EJY", x)
		if err != nil {
			return zero, err
		}
		ejz, err := grid.Tip.Eval("EJZ", x)
		if err != nil {
			return zero, err
		}
		gj, err := grid.Tip.Eval("GJ", x)
		if err != nil {
			return zero, err
		}
		rot, err := grid.Tip.Eval("ROTAN", x)
		if err != nil {
			return zero, err
		}
		y1, z1, err := shear(x)
		if err != nil {
			return zero, err
		}
		return assembleK(ea, ejy, ejz, gj, y1, z1, rot, nu), nil
	}

	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade.beam\n# name=%s\n", name)
		for ei, el := range grid.Elements {
			eid := ei + 1
			nodeIDs := [3]int{2*eid - 1, 2 * eid, 2*eid + 1}
			nodeXs := [3]float64{el.Start, el.Mid, el.End}

			fmt.Fprintf(w, "# element %d: x1=%s xm=%s x2=%s\n", eid, f10(el.Start), f10(el.Mid), f10(el.End))
			fmt.Fprintf(w, "beam3:\n")
			fmt.Fprintf(w, "    CURR_ROTOR + CURR_%s + %d,\n", name, eid)
			for n := 0; n < 3; n++ {
				ysc, zsc, err := shear(nodeXs[n])
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "    CURR_ROTOR + CURR_%s + %d\n", name, nodeIDs[n])
				fmt.Fprintf(w, "        position, reference, CURR_ROTOR + CURR_%s + NEUTR + %d, 0., %s, %s,\n", name, nodeIDs[n], f10(ysc), f10(zsc))
				fmt.Fprintf(w, "        orientation, reference, CURR_ROTOR + CURR_%s + NEUTR + %d, eye,\n", name, nodeIDs[n])
			}
			fmt.Fprintf(w, "        from nodes,\n")

			ev := grid.EvalPoints[ei]
			k1, err := kAt(ev[0])
			if err != nil {
				return err
			}
			k2, err := kAt(ev[1])
			if err != nil {
				return err
			}
			writeMatrixBlock(w, k1, fmt.Sprintf("# sec I @ r=%s", f10(ev[0])))
			writeMatrixBlock(w, k2, fmt.Sprintf("# sec II @ r=%s", f10(ev[1])))

			fmt.Fprintf(w, "\n")
		}
		return nil
	})
}
