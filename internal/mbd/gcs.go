package mbd

import (
	"bufio"
	"fmt"

	"github.com/alexiusacademia/gorotor/internal/rotors"
)

// WriteGCS writes GCS.ref enumerating each rotor origin in the global frame.
func WriteGCS(rs []rotors.Rotor, path string) error {
	return writeFile(path, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# GCS.ref\n")
		for _, r := range rs {
			fmt.Fprintf(w, "reference: ROTOR_%d, #gen ref\n", r.Index)
			fmt.Fprintf(w, "    reference, global, %s, %s, %s,\n", f10(r.Center[0]), f10(r.Center[1]), f10(r.Center[2]))
			fmt.Fprintf(w, "    reference, global, eye,\n")
			fmt.Fprintf(w, "    reference, global, null,\n")
			fmt.Fprintf(w, "    reference, global, null;\n\n")
		}
		return nil
	})
}
