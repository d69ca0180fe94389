package tables_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gorotor/internal/tables"
)

func writeAeroFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aero.dat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAero_HeaderWithUnitsLine(t *testing.T) {
	const fixture = `# planform table
Radial  Chord  Twist  Sweep  Anhedral
(m)     (m)    (deg)  (deg)  (deg)
0.5     0.30   8.0    0.0    0.0
0.0     0.25   12.0   0.0    0.0
1.0     0.20   4.0    0.0    0.0
`
	a, err := tables.LoadAero(writeAeroFixture(t, fixture))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 0.5, 1.0}, a.Radial)
	assert.Equal(t, []float64{0.25, 0.30, 0.20}, a.Chord)
	assert.Equal(t, []float64{12.0, 8.0, 4.0}, a.Twist)
	assert.Empty(t, a.Warnings)
}

func TestLoadAero_SynonymsAndMissingOptionalColumns(t *testing.T) {
	const fixture = `STA  C
0.0  0.25
1.0  0.20
`
	a, err := tables.LoadAero(writeAeroFixture(t, fixture))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0, 1.0}, a.Radial)
	assert.Equal(t, []float64{0.25, 0.20}, a.Chord)
	assert.Equal(t, []float64{0.0, 0.0}, a.Twist)
	assert.NotEmpty(t, a.Warnings)
}

func TestLoadAero_HeaderlessHeuristic(t *testing.T) {
	const fixture = `0.0  0.50  1.0
0.5  0.80  1.0
1.0  0.30  1.0
`
	a, err := tables.LoadAero(writeAeroFixture(t, fixture))
	require.NoError(t, err)
	// the monotonic first column wins Radial, the varying second wins Chord
	assert.Equal(t, []float64{0.0, 0.5, 1.0}, a.Radial)
	assert.Equal(t, []float64{0.50, 0.80, 0.30}, a.Chord)
	assert.NotEmpty(t, a.Warnings)
}

func TestLoadAero_RaggedRowsZeroPadded(t *testing.T) {
	const fixture = `Radial  Chord  Twist
0.0     0.25   12.0
1.0     0.20
`
	a, err := tables.LoadAero(writeAeroFixture(t, fixture))
	require.NoError(t, err)
	assert.Equal(t, []float64{12.0, 0.0}, a.Twist)
}

func TestLoadAero_NoDataErrors(t *testing.T) {
	_, err := tables.LoadAero(writeAeroFixture(t, "# only comments\nRadial Chord\n"))
	assert.Error(t, err)
}

func TestAeroData_InterpolatorAndSignals(t *testing.T) {
	const fixture = `Radial  Chord
0.0     0.20
2.0     0.40
`
	a, err := tables.LoadAero(writeAeroFixture(t, fixture))
	require.NoError(t, err)

	it, err := a.Interpolator()
	require.NoError(t, err)
	v, err := it.Eval("Chord", 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, v, 1e-12)

	sigs, err := a.Signals()
	require.NoError(t, err)
	require.Contains(t, sigs, "Chord")
	assert.InDelta(t, 0.40, sigs["Chord"].At(5.0), 1e-12) // clamped right
}
