package mbd_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/blade"
	"github.com/alexiusacademia/gorotor/internal/mbd"
	"github.com/alexiusacademia/gorotor/internal/rotors"
)

func constCol(v float64) []float64 { return []float64{v, v} }

// testGrid builds a single-element grid over [0,1] with constant structural
// fields matching the offsets exercised below, plus a constant 0.4 chord.
func testGrid(t *testing.T) *blade.Grid {
	t.Helper()
	x := []float64{0, 1}

	tip, err := blade.NewInterpolator(x, map[string][]float64{
		"ROTAPI": constCol(0),
		"ROTAN":  constCol(5),
		"YNA":    constCol(0.1),
		"ZNA":    constCol(0),
		"YCG":    constCol(0.2),
		"ZCG":    constCol(0),
		"YCT":    constCol(0.3),
		"ZCT":    constCol(0),
		"EA":     constCol(1),
		"EJY":    constCol(1),
		"EJZ":    constCol(1),
		"GJ":     constCol(1),
		"DM":     constCol(2),
		"DJX":    constCol(0.1),
		"DJY":    constCol(0.1),
		"DJZ":    constCol(0.1),
	})
	require.NoError(t, err)

	aero, err := blade.NewInterpolator(x, map[string][]float64{
		blade.ChordSignal: constCol(0.4),
	})
	require.NoError(t, err)

	grid, err := blade.BuildGrid(x)
	require.NoError(t, err)
	grid.AttachInterpolators(tip, aero)
	return grid
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteRefs_MirrorsLateralOffsets(t *testing.T) {
	grid := testGrid(t)
	path := filepath.Join(t.TempDir(), "blade.ref")
	require.NoError(t, mbd.WriteRefs(grid, "TEST", path, -1.0))

	text := readFile(t, path)
	assert.Contains(t, text, "-0.1000000000") // mirrored YNA
	assert.Contains(t, text, "-0.2000000000") // mirrored YCG
	// FEATH, NEUTR and BODY per node
	assert.Equal(t, 3*len(grid.Nodes), strings.Count(text, "reference: CURR_ROTOR"))
}

func TestWriteNodes_OnePerGridNode(t *testing.T) {
	grid := testGrid(t)
	path := filepath.Join(t.TempDir(), "blade.nod")
	require.NoError(t, mbd.WriteNodes(grid, "TEST", path))

	text := readFile(t, path)
	assert.Equal(t, len(grid.Nodes), strings.Count(text, "structural:"))
	assert.Contains(t, text, "CURR_ROTOR + CURR_TEST + NEUTR + 3")
}

func TestWriteBeams_MatricesAndMirroring(t *testing.T) {
	grid := testGrid(t)
	path := filepath.Join(t.TempDir(), "blade.beam")
	require.NoError(t, mbd.WriteBeams(grid, "TEST", 0.33, path, -1.0))

	text := readFile(t, path)
	assert.Equal(t, 1, strings.Count(text, "beam3:"))
	// two Gauss stations per element
	assert.Equal(t, 2, strings.Count(text, "linear elastic generic"))
	// mirrored shear-center offset YCT-YNA = 0.2
	assert.Contains(t, text, "-0.2000000000")
	assert.Contains(t, text, "from nodes,")
}

func TestWriteBodies_LumpsTotalMass(t *testing.T) {
	grid := testGrid(t)
	path := filepath.Join(t.TempDir(), "blade.body")

	total, err := mbd.WriteBodies(grid, "TEST", path)
	require.NoError(t, err)
	// constant density 2 over unit span
	assert.InDelta(t, 2.0, total, 1e-12)

	text := readFile(t, path)
	assert.Equal(t, len(grid.Nodes), strings.Count(text, "body: CURR_ROTOR"))
	assert.Contains(t, text, "# total_mass = 2.000000e+00")
	assert.Contains(t, text, "diag,")
}

func TestWriteAeroRefsAndBeams(t *testing.T) {
	grid := testGrid(t)
	dir := t.TempDir()

	refPath := filepath.Join(dir, "blade_aero.ref")
	require.NoError(t, mbd.WriteAeroRefs(grid, "TEST", refPath))
	refText := readFile(t, refPath)
	assert.Equal(t, len(grid.Nodes), strings.Count(refText, "reference: CURR_ROTOR + CURR_TEST + AERO"))

	beamPath := filepath.Join(dir, "blade.aerobeam")
	require.NoError(t, mbd.WriteAeroBeams(grid, "TEST", beamPath))
	beamText := readFile(t, beamPath)
	assert.Equal(t, 1, strings.Count(beamText, "aerodynamic beam3:"))
	assert.Contains(t, beamText, "0.4000000000")  // chord
	assert.Contains(t, beamText, "-0.2000000000") // BC trails by half chord
	assert.Equal(t, 2, strings.Count(beamText, "piecewise linear, 3,"))
}

func TestWriteAeroBeams_RequiresAeroInterpolator(t *testing.T) {
	grid := testGrid(t)
	grid.Aero = nil
	err := mbd.WriteAeroBeams(grid, "TEST", filepath.Join(t.TempDir(), "blade.aerobeam"))
	assert.Error(t, err)
}

func TestWriteGCS(t *testing.T) {
	rs := []rotors.Rotor{
		{Index: 1, Name: "R1", Center: [3]float64{1.0, 0.0, -1.0}},
		{Index: 2, Name: "R2", Center: [3]float64{0.1, 0.2, 0.3}},
	}
	path := filepath.Join(t.TempDir(), "GCS.ref")
	require.NoError(t, mbd.WriteGCS(rs, path))

	text := readFile(t, path)
	assert.Contains(t, text, "reference: ROTOR_1")
	assert.Contains(t, text, "1.0000000000")
	assert.Contains(t, text, "0.2000000000")
}

func TestWriteMain_CountsAndIncludes(t *testing.T) {
	grid := testGrid(t)
	project := t.TempDir()
	rotorDir := filepath.Join(project, "R1")
	require.NoError(t, os.MkdirAll(rotorDir, 0o755))

	require.NoError(t, mbd.WriteNodes(grid, "R1", filepath.Join(rotorDir, "blade.nod")))
	require.NoError(t, mbd.WriteBeams(grid, "R1", 0.33, filepath.Join(rotorDir, "blade.beam"), 1.0))
	_, err := mbd.WriteBodies(grid, "R1", filepath.Join(rotorDir, "blade.body"))
	require.NoError(t, err)
	require.NoError(t, mbd.WriteAeroBeams(grid, "R1", filepath.Join(rotorDir, "blade.aerobeam")))

	routs := []mbd.RotorOut{{Index: 1, Name: "R1", OutDir: rotorDir, BladeCount: 2, HasAero: true}}
	mainPath, err := mbd.WriteMain(project, routs, mbd.DefaultMainOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "main.mbd"), mainPath)

	text := readFile(t, mainPath)
	assert.Contains(t, text, "num_blade        = 3")
	assert.Contains(t, text, "num_blade_dynamic= 3")
	assert.Contains(t, text, "num_beam         = 1")
	assert.Contains(t, text, "num_aerobeam     = 1")
	assert.Contains(t, text, `include: "R1/blade.ref";`)
	assert.Contains(t, text, `include: "R1/blade.aerobeam";`)
	assert.Contains(t, text, "begin: nodes;")
	assert.Contains(t, text, "end: elements;")
	assert.Contains(t, text, "method: ms, 0.2;")
}
