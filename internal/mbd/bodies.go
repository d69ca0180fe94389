package mbd

import (
	"bufio"
	"fmt"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// WriteBodies writes blade.body: the distributed mass and inertia densities
// are lumped into one rigid body per grid node over its half-interval, with
// endpoint-mean integration and a rod term for the bending inertias. The
// total lumped mass is appended as a trailer comment and returned.
func WriteBodies(grid *blade.Grid, name, path string) (float64, error) {
	if grid.Tip == nil {
		return 0, fmt.Errorf("grid has no structural interpolator attached")
	}
	n := len(grid.Nodes)
	if n == 0 {
		return 0, fmt.Errorf("grid has no nodes")
	}
	if len(grid.Sections) < 2 {
		return 0, fmt.Errorf("grid has fewer than 2 control sections")
	}

	mean2 := func(sig string, xl, xr float64) (float64, error) {
		a, err := grid.Tip.Eval(sig, xl)
		if err != nil {
			return 0, err
		}
		b, err := grid.Tip.Eval(sig, xr)
		if err != nil {
			return 0, err
		}
		return 0.5 * (a + b), nil
	}

	total := 0.0
	err := writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# blade.body\n# name=%s\n", name)
		for i := range grid.Nodes {
			var xl, xr float64
			switch {
			case i == 0:
				xl = grid.Sections[0]
				xr = 0.5 * (grid.Nodes[0] + grid.Nodes[1])
			case i == n-1:
				xl = 0.5 * (grid.Nodes[n-2] + grid.Nodes[n-1])
				xr = grid.Sections[len(grid.Sections)-1]
			default:
				xl = 0.5 * (grid.Nodes[i-1] + grid.Nodes[i])
				xr = 0.5 * (grid.Nodes[i] + grid.Nodes[i+1])
			}

			dl := xr - xl
			if dl < 0 {
				dl = 0
			}

			var mass, jx, jy, jz float64
			if dl > 0 {
				dm, err := mean2("DM", xl, xr)
				if err != nil {
					return err
				}
				djx, err := mean2("DJX", xl, xr)
				if err != nil {
					return err
				}
				djy, err := mean2("DJY", xl, xr)
				if err != nil {
					return err
				}
				djz, err := mean2("DJZ", xl, xr)
				if err != nil {
					return err
				}

				mass = max0(dm * dl)
				jx = max0(djx * dl)
				rod := mass * dl * dl / 12
				jy = max0(djy*dl + rod)
				jz = max0(djz*dl + rod)
			}
			total += mass

			id := i + 1
			fmt.Fprintf(w, "# node %d: x=[%s, %s], dL=%s\n", id, f10(xl), f10(xr), f10(dl))
			fmt.Fprintf(w, "body: CURR_ROTOR + CURR_%s + %d, CURR_ROTOR + CURR_%s + %d\n", name, id, name, id)
			fmt.Fprintf(w, "    ,\n")
			fmt.Fprintf(w, "    %s,\n", e6(mass))
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + BODY + %d, 0., 0., 0.,\n", name, id)
			fmt.Fprintf(w, "    reference, CURR_ROTOR + CURR_%s + BODY + %d,\n", name, id)
			fmt.Fprintf(w, "        diag, %s, %s, %s\n", e6(jx), e6(jy), e6(jz))
			fmt.Fprintf(w, ";\n\n")
		}
		fmt.Fprintf(w, "# total_mass = %s\n", e6(total))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
