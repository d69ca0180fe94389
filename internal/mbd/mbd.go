// Package mbd emits the MBDyn-style input files for a blade model: reference
// frames, structural nodes, beam3 elements with 6x6 constitutive matrices,
// lumped bodies, aerodynamic panels and the project-level main file.
//
// Symbolic labels follow the CURR_ROTOR + CURR_{name} + ... convention so the
// generated fragments can be included from a hand-maintained project file.
package mbd

import (
	"bufio"
	"fmt"
	"os"
)

// f10 formats positions and offsets, e6 formats stiffness and inertia.
func f10(v float64) string { return fmt.Sprintf("%.10f", v) }
func e6(v float64) string  { return fmt.Sprintf("%.6e", v) }

// writeFile opens path, hands a buffered writer to fn and flushes.
func writeFile(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
