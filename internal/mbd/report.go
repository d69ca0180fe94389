package mbd

import (
	"bufio"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// WriteReport writes the human-readable section selection audit alongside
// the model fragments.
func WriteReport(path, name string, cfg blade.Config, nu float64, rep *blade.Report, extra []string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# Section selection report\n")
		fmt.Fprintf(w, "name=%s\n", name)
		for _, line := range extra {
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintf(w, "K=%d, elems=%d, nodes=%d\n", len(rep.Sections), rep.Elems, rep.Nodes)
		fmt.Fprintf(w, "r_start_used=%g\n", rep.StartUsed)
		fmt.Fprintf(w, "params: err_tol=%g, jump_tol=%g, max_elems=%d, max_dr=%s, min_dr=%s, nu=%g, c_eps=%g\n\n",
			cfg.ErrTol, cfg.JumpTol, cfg.MaxElems, optFloat(cfg.MaxSeg), optFloat(cfg.MinSeg), nu, cfg.ChordEps)

		fmt.Fprintf(w, "Reasons per section:\n")
		for _, r := range rep.Sections {
			tags := make([]string, 0, len(rep.Reasons[r]))
			for _, reason := range rep.Reasons[r] {
				tags = append(tags, reason.String())
			}
			fmt.Fprintf(w, "  %.6f: %s\n", r, strings.Join(tags, ", "))
		}
		if len(rep.Warnings) > 0 {
			fmt.Fprintf(w, "\nWarnings:\n")
			for _, warn := range rep.Warnings {
				fmt.Fprintf(w, "  - %s\n", warn)
			}
		}
		if len(rep.Notes) > 0 {
			fmt.Fprintf(w, "\nNotes:\n")
			for _, n := range rep.Notes {
				fmt.Fprintf(w, "  - %s\n", n)
			}
		}
		return nil
	})
}

func optFloat(v float64) string {
	if v <= 0 || math.IsNaN(v) {
		return "none"
	}
	return fmt.Sprintf("%g", v)
}
