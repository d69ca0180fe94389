package tables

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/alexiusacademia/gorotor/internal/blade"
)

// AeroData holds the aerodynamic planform table: chord against radial
// position, with optional twist/sweep/anhedral columns zero-filled when
// absent.
type AeroData struct {
	Radial   []float64
	Chord    []float64
	Twist    []float64
	Sweep    []float64
	Anhedral []float64

	Header   []string
	Warnings []string
}

// header synonym sets, matched against normalized tokens
var (
	radialKeys   = keySet("RADIAL", "R", "STA", "RADIUS", "RAD", "STATION", "SPAN")
	chordKeys    = keySet("CHORD", "C", "CRD", "CHRD", "CH", "CHORDM", "CHORDMM", "CHORDIN", "CHORDLENGTH")
	twistKeys    = keySet("TWIST", "THETA", "PITCH", "TWISTDEG", "TWISTANGLE")
	sweepKeys    = keySet("SWEEP")
	anhedralKeys = keySet("ANHEDRAL", "DIHEDRAL", "ANHD", "ANH")
)

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// LoadAero reads an aero .dat table. Radial and Chord are required; when the
// header cannot be mapped the columns are guessed heuristically (the most
// monotonic column is Radial, the most varying remaining one is Chord) with
// a recorded warning.
func LoadAero(path string) (*AeroData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading aero file: %w", err)
	}

	var lines []string
	for _, ln := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") || strings.HasPrefix(ln, "!") || strings.HasPrefix(ln, "//") {
			continue
		}
		lines = append(lines, ln)
	}

	var header []string
	var rows [][]float64
	var warnings []string

	// header = first non-numeric line, absorbing continuation lines and
	// skipping units rows, until numeric data starts
	i := 0
	if i < len(lines) && !isNumericRow(tokenize(lines[i])) {
		header = tokenize(lines[i])
		j := i + 1
		for j < len(lines) {
			toks := tokenize(lines[j])
			if isNumericRow(toks) {
				break
			}
			if !looksLikeUnitsLine(toks) {
				header = append(header, toks...)
			}
			j++
		}
		i = j
	}
	for ; i < len(lines); i++ {
		toks := tokenize(lines[i])
		if isNumericRow(toks) {
			rows = append(rows, parseFloats(toks))
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no numeric data rows found in %s", path)
	}

	ncols := 0
	for _, r := range rows {
		if len(r) > ncols {
			ncols = len(r)
		}
	}
	// materialize full columns, zero-padding ragged rows
	cols := make([][]float64, ncols)
	for j := 0; j < ncols; j++ {
		cols[j] = make([]float64, len(rows))
		for i, row := range rows {
			if j < len(row) {
				cols[j][i] = row[j]
			}
		}
	}

	idx := mapAeroHeader(header)
	var radial, chord, twist, sweep, anhedral []float64
	if _, okR := idx["Radial"]; !okR || !hasKey(idx, "Chord") {
		warnings = append(warnings, "aero header lacks canonical names; trying heuristic column guess")
		ridx, cidx, ok := guessAeroColumns(cols)
		if !ok {
			return nil, fmt.Errorf("could not infer Radial/Chord columns in %s", path)
		}
		radial = cols[ridx]
		chord = cols[cidx]
		twist = make([]float64, len(rows))
		sweep = make([]float64, len(rows))
		anhedral = make([]float64, len(rows))
	} else {
		take := func(name string, required bool) ([]float64, error) {
			j, ok := idx[name]
			if !ok {
				if required {
					return nil, fmt.Errorf("aero table missing required column %q", name)
				}
				warnings = append(warnings, fmt.Sprintf("aero table missing optional column %q, filled with 0", name))
				return make([]float64, len(rows)), nil
			}
			return cols[j], nil
		}
		if radial, err = take("Radial", true); err != nil {
			return nil, err
		}
		if chord, err = take("Chord", true); err != nil {
			return nil, err
		}
		twist, _ = take("Twist", false)
		sweep, _ = take("Sweep", false)
		anhedral, _ = take("Anhedral", false)
	}

	radial, sorted := sortDedupe(radial, [][]float64{chord, twist, sweep, anhedral})
	return &AeroData{
		Radial:   radial,
		Chord:    sorted[0],
		Twist:    sorted[1],
		Sweep:    sorted[2],
		Anhedral: sorted[3],
		Header:   header,
		Warnings: warnings,
	}, nil
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}

func mapAeroHeader(header []string) map[string]int {
	idx := make(map[string]int)
	for j, raw := range header {
		key := normToken(raw)
		switch {
		case radialKeys[key] && !hasKey(idx, "Radial"):
			idx["Radial"] = j
		case chordKeys[key] && !hasKey(idx, "Chord"):
			idx["Chord"] = j
		case twistKeys[key] && !hasKey(idx, "Twist"):
			idx["Twist"] = j
		case sweepKeys[key] && !hasKey(idx, "Sweep"):
			idx["Sweep"] = j
		case anhedralKeys[key] && !hasKey(idx, "Anhedral"):
			idx["Anhedral"] = j
		}
	}
	return idx
}

// guessAeroColumns picks the most monotonic column as Radial and the
// highest-variance remaining column as Chord. Falls back to the first two
// columns when variance gives no candidate.
func guessAeroColumns(cols [][]float64) (int, int, bool) {
	n := len(cols)
	if n == 0 {
		return 0, 0, false
	}
	ridx := 0
	best := -1.0
	for j, c := range cols {
		if s := monoScore(c); s > best {
			best, ridx = s, j
		}
	}
	cidx, bestVar := -1, -1.0
	for j, c := range cols {
		if j == ridx {
			continue
		}
		if v := stddev(c); v > bestVar {
			bestVar, cidx = v, j
		}
	}
	if cidx < 0 {
		if n > 1 {
			return 0, 1, true
		}
		return 0, 0, false
	}
	return ridx, cidx, true
}

// monoScore is the fraction of non-decreasing steps in a column.
func monoScore(col []float64) float64 {
	if len(col) < 2 {
		return 0
	}
	nondec := 0
	for i := 1; i < len(col); i++ {
		if col[i] >= col[i-1] {
			nondec++
		}
	}
	return float64(nondec) / float64(len(col)-1)
}

func stddev(col []float64) float64 {
	if len(col) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range col {
		mean += v
	}
	mean /= float64(len(col))
	ss := 0.0
	for _, v := range col {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(col)))
}

// Interpolator binds the aero quantities to a clamped-linear interpolator
// over Radial.
func (a *AeroData) Interpolator() (*blade.Interpolator, error) {
	return blade.NewInterpolator(a.Radial, map[string][]float64{
		blade.ChordSignal: a.Chord,
		"Twist":           a.Twist,
		"Sweep":           a.Sweep,
		"Anhedral":        a.Anhedral,
	})
}

// Signals returns the chord series tracked by the section selector.
func (a *AeroData) Signals() (map[string]blade.Series, error) {
	s, err := blade.NewSeries(a.Radial, a.Chord)
	if err != nil {
		return nil, fmt.Errorf("signal %s: %w", blade.ChordSignal, err)
	}
	return map[string]blade.Series{blade.ChordSignal: s}, nil
}
